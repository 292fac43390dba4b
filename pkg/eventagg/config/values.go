package config

// values wraps a decoded document for type-safe extraction.
// Accessors return the default when a key is missing or has the wrong type.
type values map[string]any

func (v values) String(key, defaultVal string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return defaultVal
}

func (v values) Bool(key string, defaultVal bool) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int accepts int, int64, and whole float64 values (JSON numbers).
func (v values) Int(key string, defaultVal int) int {
	switch val := v[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Section returns a nested mapping. YAML and JSON both decode mappings
// to map[string]any.
func (v values) Section(key string) values {
	if m, ok := v[key].(map[string]any); ok {
		return values(m)
	}
	return values{}
}
