package preset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/shaban/modconnector/model"
)

// PluginDescriptor is the subset of plugin metadata the loader needs to
// fill in fields a preset file doesn't carry (port counts and display
// names); DefaultValues is not read by the loader. It is supplied by whatever plugin catalog the
// host embeds; this package has no opinion on where that catalog comes
// from.
type PluginDescriptor struct {
	Name          string
	Abbreviation  string
	Brand         string
	NumInputs     int
	NumOutputs    int
	DefaultValues map[string]float32
}

// PluginLookup resolves a plugin URI to its descriptor. ok is false for an
// unknown or uninstalled plugin.
type PluginLookup func(uri string) (desc PluginDescriptor, ok bool)

// Diagnostic records one non-fatal problem found while loading a file.
type Diagnostic struct {
	Path    string // e.g. "chains[0].blocks[2]"
	Message string
}

// Loader loads preset and bank files defensively.
type Loader struct {
	Lookup PluginLookup
	Logger zerolog.Logger
}

// LoadPreset reads and decodes a standalone preset file.
func (l Loader) LoadPreset(r io.Reader) (*model.Preset, []Diagnostic, error) {
	var file PresetFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("preset: decode: %w", err)
	}
	if file.Type != "" && file.Type != TypePreset {
		return nil, nil, fmt.Errorf("preset: expected type %q, file declares %q", TypePreset, file.Type)
	}
	if file.Version < MinSupportedVersion || file.Version > MaxSupportedVersion {
		return nil, nil, fmt.Errorf("preset: unsupported version %d (supported %d-%d)", file.Version, MinSupportedVersion, MaxSupportedVersion)
	}
	p, diags := l.fromDTO(&file.Preset)
	return p, diags, nil
}

// LoadBank reads and decodes a bank file, including every preset it
// contains.
func (l Loader) LoadBank(r io.Reader) (*model.Bank, []Diagnostic, error) {
	var file BankFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("preset: decode bank: %w", err)
	}
	if file.Type != "" && file.Type != TypeBank {
		return nil, nil, fmt.Errorf("preset: expected type %q, file declares %q", TypeBank, file.Type)
	}
	if file.Version < MinSupportedVersion || file.Version > MaxSupportedVersion {
		return nil, nil, fmt.Errorf("preset: unsupported version %d (supported %d-%d)", file.Version, MinSupportedVersion, MaxSupportedVersion)
	}

	bank := &model.Bank{Title: file.Title}
	var all []Diagnostic
	for i := 0; i < model.PresetsPerBank; i++ {
		if i >= len(file.Presets) || file.Presets[i] == nil {
			continue
		}
		p, diags := l.fromDTO(file.Presets[i])
		bank.Presets[i] = p
		all = append(all, diags...)
	}
	return bank, all, nil
}

func (l Loader) fromDTO(dto *PresetDTO) (*model.Preset, []Diagnostic) {
	p := model.NewPreset(len(dto.Chains))
	p.Name = dto.Name
	p.Filename = dto.Filename
	p.UUID = dto.UUID
	if p.UUID == "" {
		p.RegenUUID()
	}
	p.Scene = clampInt(dto.Scene, 0, model.ScenesPerPreset-1)
	p.SceneNames = dto.SceneNames
	p.Background = model.Background{Color: dto.Background.Color, Style: dto.Background.Style}

	var diags []Diagnostic
	for ri, rowDTO := range dto.Chains {
		row := &p.Chains[ri]
		row.Capture = rowDTO.Capture
		row.Playback = rowDTO.Playback
		for bi := 0; bi < model.BlocksPerPreset; bi++ {
			if bi >= len(rowDTO.Blocks) {
				continue
			}
			blockDTO := rowDTO.Blocks[bi]
			path := fmt.Sprintf("chains[%d].blocks[%d]", ri, bi)
			block, d := l.blockFromDTO(blockDTO, path)
			row.Blocks[bi] = block
			diags = append(diags, d...)
		}
	}

	for i := 0; i < model.BindingActuators && i < len(dto.Bindings); i++ {
		b := dto.Bindings[i]
		binding := model.Bindings{Name: b.Name, Value: b.Value}
		for _, pb := range b.Parameters {
			binding.Parameters = append(binding.Parameters, model.ParameterBinding{
				Row: pb.Row, Block: pb.Block, Min: pb.Min, Max: pb.Max, ParameterSymbol: pb.ParameterSymbol,
			})
		}
		for _, pb := range b.Properties {
			binding.Properties = append(binding.Properties, model.PropertyBinding{
				Row: pb.Row, Block: pb.Block, PropertyURI: pb.PropertyURI,
			})
		}
		p.Bindings[i] = binding
	}

	return p, diags
}

func (l Loader) blockFromDTO(dto BlockDTO, path string) (model.Block, []Diagnostic) {
	if dto.URI == "" {
		return model.Block{}, nil
	}

	var diags []Diagnostic
	desc, ok := PluginDescriptor{}, false
	if l.Lookup != nil {
		desc, ok = l.Lookup(dto.URI)
	}
	if !ok {
		diags = append(diags, Diagnostic{Path: path, Message: fmt.Sprintf("plugin %q not found, leaving cell empty", dto.URI)})
		l.Logger.Warn().Str("uri", dto.URI).Str("path", path).Msg("preset: unknown plugin, dropping block")
		return model.Block{}, diags
	}

	block := model.Block{
		Enabled:        dto.Enabled,
		QuickPotSymbol: dto.QuickPotSymbol,
		URI:            dto.URI,
	}
	block.Meta.Name = desc.Name
	block.Meta.Abbreviation = desc.Abbreviation
	block.Meta.Brand = desc.Brand
	block.Meta.NumInputs = desc.NumInputs
	block.Meta.NumOutputs = desc.NumOutputs
	block.Meta.IsMonoIn = desc.NumInputs == 1
	block.Meta.IsStereoOut = desc.NumOutputs >= 2

	for _, pd := range dto.Parameters {
		block.Parameters = append(block.Parameters, model.Parameter{Symbol: pd.Symbol, Value: pd.Value})
	}
	for _, prd := range dto.Properties {
		block.Properties = append(block.Properties, model.Property{URI: prd.URI, Value: prd.Value})
	}
	for _, svd := range dto.SceneValues {
		block.SceneValues = append(block.SceneValues, model.SceneValues{
			Enabled:        svd.Enabled,
			ParametersUsed: svd.ParametersUsed,
			Parameters:     svd.Parameters,
			PropertiesUsed: svd.PropertiesUsed,
			Properties:     svd.Properties,
		})
	}
	return block, diags
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SavePreset writes a standalone preset file.
func SavePreset(w io.Writer, p *model.Preset) error {
	dto := toDTO(p)
	file := PresetFile{Envelope: Envelope{Type: TypePreset, Version: MaxSupportedVersion}, Preset: *dto}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// SaveBank writes a full bank file.
func SaveBank(w io.Writer, b *model.Bank) error {
	file := BankFile{Envelope: Envelope{Type: TypeBank, Version: MaxSupportedVersion}, Title: b.Title}
	for _, p := range b.Presets {
		if p == nil {
			file.Presets = append(file.Presets, nil)
			continue
		}
		file.Presets = append(file.Presets, toDTO(p))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

func toDTO(p *model.Preset) *PresetDTO {
	dto := &PresetDTO{
		Name: p.Name, Filename: p.Filename, UUID: p.UUID, Scene: p.Scene,
		SceneNames: p.SceneNames, Background: BackgroundDTO{Color: p.Background.Color, Style: p.Background.Style},
	}
	for i, b := range p.Bindings {
		bd := BindingsDTO{Name: b.Name, Value: b.Value}
		for _, pb := range b.Parameters {
			bd.Parameters = append(bd.Parameters, ParameterBindingDTO{
				Row: pb.Row, Block: pb.Block, Min: pb.Min, Max: pb.Max, ParameterSymbol: pb.ParameterSymbol,
			})
		}
		for _, pb := range b.Properties {
			bd.Properties = append(bd.Properties, PropertyBindingDTO{Row: pb.Row, Block: pb.Block, PropertyURI: pb.PropertyURI})
		}
		dto.Bindings[i] = bd
	}
	for _, row := range p.Chains {
		rowDTO := ChainRowDTO{Capture: row.Capture, Playback: row.Playback}
		for _, b := range row.Blocks {
			blockDTO := BlockDTO{Enabled: b.Enabled, QuickPotSymbol: b.QuickPotSymbol, URI: b.URI}
			for _, param := range b.Parameters {
				blockDTO.Parameters = append(blockDTO.Parameters, ParameterDTO{Symbol: param.Symbol, Value: param.Value})
			}
			for _, prop := range b.Properties {
				blockDTO.Properties = append(blockDTO.Properties, PropertyDTO{URI: prop.URI, Value: prop.Value})
			}
			for _, sv := range b.SceneValues {
				blockDTO.SceneValues = append(blockDTO.SceneValues, SceneValuesDTO{
					Enabled:        sv.Enabled,
					ParametersUsed: sv.ParametersUsed,
					Parameters:     sv.Parameters,
					PropertiesUsed: sv.PropertiesUsed,
					Properties:     sv.Properties,
				})
			}
			rowDTO.Blocks = append(rowDTO.Blocks, blockDTO)
		}
		dto.Chains = append(dto.Chains, rowDTO)
	}
	return dto
}

// LoadPresetFile opens and loads a preset file from disk.
func (l Loader) LoadPresetFile(path string) (*model.Preset, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return l.LoadPreset(f)
}

// SavePresetFile writes a preset file to disk, replacing it atomically via
// a temp-file rename.
func SavePresetFile(path string, p *model.Preset) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := SavePreset(f, p); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
