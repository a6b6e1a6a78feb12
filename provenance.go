package envschema

// Source names recorded in provenance for values that did not come from a Source.
const (
	SourceDefault = "default"
)

// FieldProvenance describes where a resolved variable's value came from.
type FieldProvenance struct {
	Key        string `json:"key"`    // Variable name (e.g., "PORT")
	SourceName string `json:"source"` // Source identifier (e.g., "env", "file:.env", "default")
	Secret     bool   `json:"secret"` // Whether the descriptor is marked secret
}

// Provenance returns the origin of every resolved variable, ordered by key.
func (c *Config) Provenance() []FieldProvenance {
	out := make([]FieldProvenance, 0, len(c.values))
	for _, key := range c.Keys() {
		out = append(out, FieldProvenance{
			Key:        key,
			SourceName: c.sources[key],
			Secret:     c.schema[key].Secret,
		})
	}
	return out
}

// SourceOf returns the name of the source that supplied key.
func (c *Config) SourceOf(key string) (string, bool) {
	name, ok := c.sources[key]
	return name, ok
}
