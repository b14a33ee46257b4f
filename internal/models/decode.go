package models

import "time"

// Tolerant decoding helpers for raw document maps. The store hands back
// map[string]any; field types coming off the wire are not guaranteed.

func docString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func docBool(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func docInt(data map[string]any, key string) int {
	switch n := data[key].(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func docTime(data map[string]any, key string) time.Time {
	t, _ := data[key].(time.Time)
	return t
}

func docStringSlice(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func docMap(data map[string]any, key string) map[string]any {
	m, _ := data[key].(map[string]any)
	return m
}
