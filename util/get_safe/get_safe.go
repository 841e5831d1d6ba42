package getsafe

func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Float(payload map[string]any, key string, fallback float64) float64 {
	if v, ok := payload[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return fallback
}

func Maps(payload map[string]any, key string) []map[string]any {
	v, ok := payload[key]
	if !ok {
		return nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil
	}

	maps := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			maps = append(maps, m)
		}
	}

	return maps
}
