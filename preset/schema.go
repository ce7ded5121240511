// Package preset defines the on-disk JSON schema for banks and presets and
// loads it defensively: a block's display names and port counts are filled
// from plugin metadata, unrecognized plugin URIs become an empty cell plus a
// diagnostic rather than a load failure, and an out-of-range scene index is
// clamped. Parameter values are taken as written: they are not clamped to
// the plugin's range, and parameters missing from the file are not added.
package preset

import "github.com/shaban/modconnector/model"

// MinSupportedVersion and MaxSupportedVersion bound the envelope "version"
// field a file may declare. Files outside the range are rejected outright;
// files inside it are loaded even if they predate fields added since.
const (
	MinSupportedVersion = 1
	MaxSupportedVersion = 1
)

// EnvelopeType distinguishes a lone preset file from a full bank file.
type EnvelopeType string

const (
	TypeBank   EnvelopeType = "bank"
	TypePreset EnvelopeType = "preset"
)

// Envelope is the outermost shape of every file this package reads or
// writes.
type Envelope struct {
	Type    EnvelopeType `json:"type"`
	Version int          `json:"version"`
}

// ParameterDTO is the JSON shape of model.Parameter.
type ParameterDTO struct {
	Symbol string  `json:"symbol"`
	Value  float32 `json:"value"`
}

// PropertyDTO is the JSON shape of model.Property.
type PropertyDTO struct {
	URI   string `json:"uri"`
	Value string `json:"value"`
}

// SceneValuesDTO is the JSON shape of model.SceneValues.
type SceneValuesDTO struct {
	Enabled        bool      `json:"enabled"`
	ParametersUsed []bool    `json:"parametersUsed,omitempty"`
	Parameters     []float32 `json:"parameters,omitempty"`
	PropertiesUsed []bool    `json:"propertiesUsed,omitempty"`
	Properties     []string  `json:"properties,omitempty"`
}

// BlockDTO is the JSON shape of model.Block.
type BlockDTO struct {
	Enabled        bool             `json:"enabled"`
	QuickPotSymbol string           `json:"quickPotSymbol,omitempty"`
	URI            string           `json:"uri"`
	Parameters     []ParameterDTO   `json:"parameters,omitempty"`
	Properties     []PropertyDTO    `json:"properties,omitempty"`
	SceneValues    []SceneValuesDTO `json:"sceneValues,omitempty"`
}

// ChainRowDTO is the JSON shape of model.ChainRow.
type ChainRowDTO struct {
	Blocks   []BlockDTO `json:"blocks"`
	Capture  [2]string  `json:"capture"`
	Playback [2]string  `json:"playback"`
}

// ParameterBindingDTO is the JSON shape of model.ParameterBinding.
type ParameterBindingDTO struct {
	Row             int     `json:"row"`
	Block           int     `json:"block"`
	Min             float32 `json:"min"`
	Max             float32 `json:"max"`
	ParameterSymbol string  `json:"parameterSymbol"`
}

// PropertyBindingDTO is the JSON shape of model.PropertyBinding.
type PropertyBindingDTO struct {
	Row         int    `json:"row"`
	Block       int    `json:"block"`
	PropertyURI string `json:"propertyURI"`
}

// BindingsDTO is the JSON shape of model.Bindings.
type BindingsDTO struct {
	Name       string                `json:"name"`
	Parameters []ParameterBindingDTO `json:"parameters,omitempty"`
	Properties []PropertyBindingDTO  `json:"properties,omitempty"`
	Value      float64               `json:"value"`
}

// BackgroundDTO is the JSON shape of model.Background.
type BackgroundDTO struct {
	Color string `json:"color"`
	Style string `json:"style"`
}

// PresetDTO is the JSON shape of one preset, used both standalone (with
// Envelope) and embedded inside a BankDTO.
type PresetDTO struct {
	Name       string                              `json:"name"`
	Filename   string                              `json:"filename"`
	UUID       string                              `json:"uuid"`
	Scene      int                                 `json:"scene"`
	SceneNames [model.ScenesPerPreset]string        `json:"sceneNames"`
	Bindings   [model.BindingActuators]BindingsDTO  `json:"bindings"`
	Background BackgroundDTO                        `json:"background"`
	Chains     []ChainRowDTO                        `json:"chains"`
}

// PresetFile is a standalone preset file on disk.
type PresetFile struct {
	Envelope
	Preset PresetDTO `json:"preset"`
}

// BankFile is a full bank file on disk.
type BankFile struct {
	Envelope
	Title   string       `json:"title"`
	Presets []*PresetDTO `json:"presets"`
}
