package yahoo

// rawValue extracts the "raw" number from Yahoo's {raw, fmt} wrapper,
// or the bare number when the field is not wrapped.
func rawValue(m map[string]interface{}, key string) *float64 {
	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}
	switch v := val.(type) {
	case float64:
		return &v
	case map[string]interface{}:
		if raw, ok := v["raw"].(float64); ok {
			return &raw
		}
	}
	return nil
}

func rawOrZero(m map[string]interface{}, key string) float64 {
	if v := rawValue(m, key); v != nil {
		return *v
	}
	return 0
}

func getFloat64OrZero(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func getString(m map[string]interface{}, key, defaultVal string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}
