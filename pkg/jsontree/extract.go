// Package jsontree walks arbitrarily nested JSON documents decoded into
// map[string]any / []any and collects every value stored under a given key.
package jsontree

// Extract returns every value found under key anywhere in node, in
// depth-first encounter order. Container values (maps and slices) are
// recursed into; key equality is only tested against scalar values. An
// empty structure or an absent key yields an empty result, never an error.
func Extract(node any, key string) []any {
	values := make([]any, 0)
	return extract(node, values, key)
}

func extract(node any, values []any, key string) []any {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			switch v.(type) {
			case map[string]any, []any:
				values = extract(v, values, key)
			default:
				if k == key {
					values = append(values, v)
				}
			}
		}
	case []any:
		for _, item := range n {
			values = extract(item, values, key)
		}
	}
	return values
}
