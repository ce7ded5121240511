// Package model defines the in-memory pedalboard data model: banks, presets,
// chain rows of blocks, parameters, properties, hardware bindings and scene
// snapshots. Types here hold no engine connection and do no I/O; they are
// mutated by the connector package and (de)serialized by the preset package.
package model

import "github.com/google/uuid"

// Build-time capacity constants, carried over from the default configuration
// of the system this model was built for.
const (
	PresetsPerBank     = 3
	ScenesPerPreset    = 3
	BlocksPerPreset    = 6
	BindingActuators   = 6
	BindingPages       = 1
	MaxParamsPerBlock  = 60
	MaxPluginInstances = 9990
	MaxToolInstances   = 10
)

// DirtyState reports how a Current preset differs from what was last saved.
type DirtyState int

const (
	// Clean means the in-memory preset matches the file it was loaded from.
	Clean DirtyState = 0
	// Dirty means block/parameter/binding data changed since the last save.
	Dirty DirtyState = 1
	// DirtySceneOnly means only the active scene index or scene values
	// changed; a save only needs to persist the scene snapshot.
	DirtySceneOnly DirtyState = -1
)

// ScalePoint labels one value of an enumerated parameter.
type ScalePoint struct {
	Label string  `json:"label"`
	Value float32 `json:"value"`
}

// ParameterMeta holds plugin-derived metadata for a Parameter. It is never
// persisted; Block.LoadFromPlugin fills it from plugin metadata. A block
// read from a preset file by the preset package carries it zeroed.
type ParameterMeta struct {
	Flags         uint32       `json:"-"`
	Designation   string       `json:"-"`
	Name          string       `json:"-"`
	ShortName     string       `json:"-"`
	Unit          string       `json:"-"`
	Default       float32      `json:"-"`
	Min           float32      `json:"-"`
	Max           float32      `json:"-"`
	ScalePoints   []ScalePoint `json:"-"`
	HasHWBinding  bool         `json:"-"`
	InScenes      bool         `json:"-"`
}

// Parameter is one control port value on a loaded block.
type Parameter struct {
	Symbol             string        `json:"symbol"`
	Value              float32       `json:"value"`
	Meta               ParameterMeta `json:"-"`
	TemporarySceneOnly bool          `json:"-"`
}

// PropertyMeta mirrors ParameterMeta for patch properties (non-control-port
// plugin state, e.g. file paths or string values).
type PropertyMeta struct {
	Flags     uint32 `json:"-"`
	Name      string `json:"-"`
	ShortName string `json:"-"`
	DefPath   string `json:"-"`
}

// Property is one patch-property value on a loaded block.
type Property struct {
	URI   string       `json:"uri"`
	Value string       `json:"value"`
	Meta  PropertyMeta `json:"-"`
}

// SceneValues is a snapshot of one block's scene-enabled parameters and
// properties for a single scene index. ParametersUsed/PropertiesUsed are
// index-aligned with Block.Parameters/Block.Properties: a true entry means
// this scene carries its own value for that parameter or property, distinct
// from merely holding a zero value. Scene index 0 is the reserved "baseline"
// snapshot captured lazily the first time any non-zero scene writes a given
// parameter (see Block.HasScenes and the controller's scene-write path).
type SceneValues struct {
	Enabled        bool      `json:"enabled"`
	ParametersUsed []bool    `json:"parametersUsed,omitempty"`
	Parameters     []float32 `json:"parameters,omitempty"`
	PropertiesUsed []bool    `json:"propertiesUsed,omitempty"`
	Properties     []string  `json:"properties,omitempty"`
}

// BlockMeta holds plugin-derived, never-persisted display and topology
// metadata for a Block.
type BlockMeta struct {
	Name                  string `json:"-"`
	Abbreviation          string `json:"-"`
	Brand                 string `json:"-"`
	NumInputs             int    `json:"-"`
	NumOutputs            int    `json:"-"`
	NumSideInputs         int    `json:"-"`
	NumSideOutputs        int    `json:"-"`
	IsMonoIn              bool   `json:"-"`
	IsStereoOut           bool   `json:"-"`
	HasScenes             bool   `json:"-"`
	HasHWBinding          bool   `json:"-"`
	QuickPotIndex         int    `json:"-"`
	NumParametersInScenes int    `json:"-"`
	NumPropertiesInScenes int    `json:"-"`
}

// Block is one loaded (or empty, if URI is "") plugin slot in a chain row.
type Block struct {
	Enabled         bool          `json:"enabled"`
	QuickPotSymbol  string        `json:"quickPotSymbol,omitempty"`
	URI             string        `json:"uri"`
	Parameters      []Parameter   `json:"parameters,omitempty"`
	Properties      []Property    `json:"properties,omitempty"`
	SceneValues     []SceneValues `json:"sceneValues,omitempty"`
	Meta            BlockMeta     `json:"-"`
	lastSavedScenes []SceneValues
}

// IsEmpty reports whether the block has no plugin loaded.
func (b *Block) IsEmpty() bool { return b.URI == "" }

// LoadFromPlugin (re)initializes a block from freshly scanned plugin
// metadata: parameters/properties are reset to their declared defaults,
// derived topology metadata is recomputed, and any prior scene overrides are
// discarded since they addressed a different plugin's parameter layout.
func (b *Block) LoadFromPlugin(info PluginInfo) {
	b.URI = info.URI
	b.Enabled = true
	b.QuickPotSymbol = ""
	b.SceneValues = nil

	b.Meta = BlockMeta{
		Name:           info.Name,
		Abbreviation:   info.Abbreviation,
		Brand:          info.Brand,
		NumInputs:      info.NumInputs,
		NumOutputs:     info.NumOutputs,
		NumSideInputs:  info.NumSideInputs,
		NumSideOutputs: info.NumSideOutputs,
		IsMonoIn:       info.NumInputs == 1,
		IsStereoOut:    info.NumOutputs >= 2,
	}

	b.Parameters = make([]Parameter, 0, len(info.Parameters))
	for _, p := range info.Parameters {
		b.Parameters = append(b.Parameters, Parameter{
			Symbol: p.Symbol,
			Value:  p.Default,
			Meta: ParameterMeta{
				Flags:       p.Flags,
				Name:        p.Name,
				ShortName:   p.ShortName,
				Unit:        p.Unit,
				Default:     p.Default,
				Min:         p.Min,
				Max:         p.Max,
				ScalePoints: p.ScalePoints,
			},
		})
		if p.Symbol != "" && b.QuickPotSymbol == "" && !p.IsOutput {
			b.QuickPotSymbol = p.Symbol
		}
	}
	b.Properties = make([]Property, 0, len(info.Properties))
	for _, p := range info.Properties {
		b.Properties = append(b.Properties, Property{
			URI:   p.URI,
			Value: p.DefPath,
			Meta: PropertyMeta{
				Flags:     p.Flags,
				Name:      p.Name,
				ShortName: p.ShortName,
				DefPath:   p.DefPath,
			},
		})
	}
}

// Clear resets the block back to the empty-cell state.
func (b *Block) Clear() {
	*b = Block{}
}

// ParameterIndexForSymbol returns the index of the parameter with the given
// symbol, or -1 if not present.
func (b *Block) ParameterIndexForSymbol(symbol string) int {
	for i := range b.Parameters {
		if b.Parameters[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// PropertyIndexForURI returns the index of the property with the given URI,
// or -1 if not present.
func (b *Block) PropertyIndexForURI(uri string) int {
	for i := range b.Properties {
		if b.Properties[i].URI == uri {
			return i
		}
	}
	return -1
}

// HasScenes reports whether any parameter or property on the block carries
// per-scene values.
func (b *Block) HasScenes() bool {
	if b.Meta.NumParametersInScenes > 0 || b.Meta.NumPropertiesInScenes > 0 || b.SceneUsedCount() > 0 {
		return true
	}
	for _, sv := range b.SceneValues {
		for _, used := range sv.PropertiesUsed {
			if used {
				return true
			}
		}
	}
	return false
}

// ensureScene grows b.SceneValues and its used/value slices so scene index
// sceneIdx can address paramIdx and propIdx without a bounds check at every
// call site. sceneCount, paramCount and propCount come from the preset's
// fixed scene count and this block's current parameter/property counts.
func (b *Block) ensureScene(sceneIdx, sceneCount, paramCount, propCount int) *SceneValues {
	for len(b.SceneValues) < sceneCount {
		b.SceneValues = append(b.SceneValues, SceneValues{})
	}
	sv := &b.SceneValues[sceneIdx]
	for len(sv.ParametersUsed) < paramCount {
		sv.ParametersUsed = append(sv.ParametersUsed, false)
		sv.Parameters = append(sv.Parameters, 0)
	}
	for len(sv.PropertiesUsed) < propCount {
		sv.PropertiesUsed = append(sv.PropertiesUsed, false)
		sv.Properties = append(sv.Properties, "")
	}
	return sv
}

// SceneParamUsed reports whether sceneIdx carries its own value for the
// parameter at paramIdx.
func (b *Block) SceneParamUsed(sceneIdx, paramIdx int) bool {
	if sceneIdx < 0 || sceneIdx >= len(b.SceneValues) {
		return false
	}
	sv := b.SceneValues[sceneIdx]
	return paramIdx >= 0 && paramIdx < len(sv.ParametersUsed) && sv.ParametersUsed[paramIdx]
}

// SetSceneParam records value as sceneIdx's override for the parameter at
// paramIdx, growing storage as needed.
func (b *Block) SetSceneParam(sceneIdx, sceneCount, paramIdx int, value float32) {
	sv := b.ensureScene(sceneIdx, sceneCount, paramIdx+1, len(b.Properties))
	sv.ParametersUsed[paramIdx] = true
	sv.Parameters[paramIdx] = value
	sv.Enabled = true
}

// SceneParamValue returns sceneIdx's stored value for paramIdx; the second
// return is false if the scene has no override for it.
func (b *Block) SceneParamValue(sceneIdx, paramIdx int) (float32, bool) {
	if sceneIdx < 0 || sceneIdx >= len(b.SceneValues) {
		return 0, false
	}
	sv := b.SceneValues[sceneIdx]
	if paramIdx < 0 || paramIdx >= len(sv.ParametersUsed) || !sv.ParametersUsed[paramIdx] {
		return 0, false
	}
	return sv.Parameters[paramIdx], true
}

// SceneUsedCount returns how many parameter slots across all scenes (scene 0
// included) are marked used, mirroring the source's meta.numParametersInScenes
// bookkeeping.
func (b *Block) SceneUsedCount() int {
	n := 0
	for _, sv := range b.SceneValues {
		for _, used := range sv.ParametersUsed {
			if used {
				n++
			}
		}
	}
	return n
}

// ToolSlot is a standalone LV2 utility plugin instance (not part of a chain
// row), reserved out of the tail of the instance pool.
type ToolSlot struct {
	Enabled    bool        `json:"enabled"`
	URI        string      `json:"uri"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// ParameterBinding ties a hardware actuator to one block's parameter.
type ParameterBinding struct {
	Row             int     `json:"row"`
	Block           int     `json:"block"`
	Min             float32 `json:"min"`
	Max             float32 `json:"max"`
	ParameterSymbol string  `json:"parameterSymbol"`
	parameterIndex  int
}

// PropertyBinding ties a hardware actuator to one block's property.
type PropertyBinding struct {
	Row         int    `json:"row"`
	Block       int    `json:"block"`
	PropertyURI string `json:"propertyURI"`
	propertyIndex int
}

// Bindings is everything assigned to one hardware actuator: a display name,
// the list of parameter/property bindings it drives in lockstep, and the
// actuator's last normalized value.
type Bindings struct {
	Name       string             `json:"name"`
	Parameters []ParameterBinding `json:"parameters,omitempty"`
	Properties []PropertyBinding  `json:"properties,omitempty"`
	Value      float64            `json:"value"`
}

// ChainRow is one parallel signal path of blocks between a pair of capture
// ports and a pair of playback ports.
type ChainRow struct {
	Blocks        [BlocksPerPreset]Block `json:"blocks"`
	Capture       [2]string              `json:"capture"`
	Playback      [2]string              `json:"playback"`
	captureID     [2]uint16
	playbackID    [2]uint16
}

// Preset is one saved pedalboard: N parallel chain rows, hardware bindings,
// named scenes and display metadata.
type Preset struct {
	Name        string                         `json:"name"`
	Filename    string                         `json:"filename"`
	UUID        string                         `json:"uuid"`
	Scene       int                            `json:"scene"`
	SceneNames  [ScenesPerPreset]string        `json:"sceneNames"`
	Bindings    [BindingActuators]Bindings     `json:"bindings"`
	Background  Background                     `json:"background"`
	Chains      []ChainRow                     `json:"-"`
}

// Background is the cosmetic preset-screen styling the editor paints; the
// connector stores it opaquely and never interprets it.
type Background struct {
	Color string `json:"color"`
	Style string `json:"style"`
}

// NewPreset returns an empty preset with a freshly generated UUID and the
// given number of chain rows.
func NewPreset(rows int) *Preset {
	p := &Preset{UUID: uuid.NewString()}
	p.Chains = make([]ChainRow, rows)
	return p
}

// RegenUUID assigns the preset a new random UUID, e.g. after "save as".
func (p *Preset) RegenUUID() {
	p.UUID = uuid.NewString()
}

// Clone returns a deep copy of the preset: every slice-backed field (chain
// rows, block parameter/property/scene lists, bindings) gets its own backing
// array, so mutating the copy never touches p. Used whenever a preset moves
// between the bank's saved state and the connector's live "current" preset.
func (p *Preset) Clone() *Preset {
	out := *p
	out.Chains = make([]ChainRow, len(p.Chains))
	for i := range p.Chains {
		out.Chains[i] = p.Chains[i].clone()
	}
	for i := range p.Bindings {
		out.Bindings[i] = p.Bindings[i].clone()
	}
	return &out
}

func (r ChainRow) clone() ChainRow {
	out := r
	for i := range r.Blocks {
		out.Blocks[i] = r.Blocks[i].clone()
	}
	return out
}

func (b Block) clone() Block {
	out := b
	out.Parameters = append([]Parameter(nil), b.Parameters...)
	out.Properties = append([]Property(nil), b.Properties...)
	out.SceneValues = append([]SceneValues(nil), b.SceneValues...)
	for i := range out.SceneValues {
		out.SceneValues[i] = out.SceneValues[i].clone()
	}
	return out
}

func (sv SceneValues) clone() SceneValues {
	out := sv
	out.ParametersUsed = append([]bool(nil), sv.ParametersUsed...)
	out.Parameters = append([]float32(nil), sv.Parameters...)
	out.PropertiesUsed = append([]bool(nil), sv.PropertiesUsed...)
	out.Properties = append([]string(nil), sv.Properties...)
	return out
}

func (bd Bindings) clone() Bindings {
	out := bd
	out.Parameters = append([]ParameterBinding(nil), bd.Parameters...)
	out.Properties = append([]PropertyBinding(nil), bd.Properties...)
	return out
}

// Block returns a pointer to the block at (row, index), or nil if out of
// range.
func (p *Preset) Block(row, index int) *Block {
	if row < 0 || row >= len(p.Chains) {
		return nil
	}
	if index < 0 || index >= BlocksPerPreset {
		return nil
	}
	return &p.Chains[row].Blocks[index]
}

// Current is the live, possibly-unsaved preset plus the bookkeeping needed
// to reconcile it against the running engine and against its own file.
type Current struct {
	Preset

	DefaultScene     int
	PresetIndex      int
	NumLoadedPlugins int
	Dirty            DirtyState
}

// Bank is a fixed-size set of presets that can be preloaded together.
type Bank struct {
	Presets [PresetsPerBank]*Preset
	Title   string
}
