package generic

// Native converts a materialized value into plain Go data: records become
// map[string]any keyed by field name and enum symbols their symbol text.
// Other values are returned as they are, with containers converted
// recursively.
func Native(v any) any {
	switch t := v.(type) {
	case *Record:
		out := make(map[string]any, len(t.values))
		for i, f := range t.schema.Fields() {
			out[f.Name()] = Native(t.values[i])
		}
		return out
	case EnumSymbol:
		return t.Symbol
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Native(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Native(e)
		}
		return out
	default:
		return v
	}
}
