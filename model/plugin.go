package model

// ParameterInfo is the plugin-declared metadata for one control port, as
// reported by the plugin-metadata collaborator (out of scope, §1). The
// controller reads it once per ReplaceBlock/ResetBlock to populate
// Parameter.Meta and seed Parameter.Value.
type ParameterInfo struct {
	Symbol      string
	Name        string
	ShortName   string
	Unit        string
	Default     float32
	Min         float32
	Max         float32
	Flags       uint32
	IsOutput    bool
	ScalePoints []ScalePoint
}

// PropertyInfo mirrors ParameterInfo for patch properties.
type PropertyInfo struct {
	URI       string
	Name      string
	ShortName string
	Flags     uint32
	DefPath   string
}

// PluginInfo is the subset of a scanned plugin bundle the controller needs
// to instantiate a block: port counts for the dual-mono decision (§4.3),
// and the parameter/property list used to seed a freshly loaded block.
type PluginInfo struct {
	URI            string
	Name           string
	Abbreviation   string
	Brand          string
	NumInputs      int
	NumOutputs     int
	NumSideInputs  int
	NumSideOutputs int
	Parameters     []ParameterInfo
	Properties     []PropertyInfo
}

// PluginLookup resolves a plugin URI to its metadata. It is the seam the
// connector uses to reach the out-of-scope plugin-metadata library (§1, §6);
// this package defines only the shape, never an implementation.
type PluginLookup interface {
	Lookup(uri string) (PluginInfo, bool)
}

// PluginLookupFunc adapts a plain function to PluginLookup.
type PluginLookupFunc func(uri string) (PluginInfo, bool)

// Lookup implements PluginLookup.
func (f PluginLookupFunc) Lookup(uri string) (PluginInfo, bool) { return f(uri) }
