package apitablev1

import (
	"encoding/json"
	"sort"
)

func GetKeys[T any](m map[string]T) []string {
	keys := []string{}
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// jsonNormalize round-trips values through JSON so typed cells (int64
// numbers, base64 bytes) compare the way filters written in JSON expect.
func jsonNormalize(values map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(values)
	if err != nil {
		return values
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return values
	}
	return out
}
