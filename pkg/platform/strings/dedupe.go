// Package strings provides string slice utilities.
package strings

// Dedupe removes duplicates and empty strings from a slice. Values are
// compared byte for byte and never trimmed or case folded. Order is preserved.
//
// Example:
//
//	Dedupe([]string{"BONK", "bonk", "", "BONK"})
//	// Returns: []string{"BONK", "bonk"}
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}

	return result
}
