package contract

import "strings"

// HasValue is the single "has a value" predicate shared by the
// synchronizer's skip-check and the text provider's absence-check.
// nil and blank-only strings both mean "has no value".
func HasValue(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(s) != ""
	case []byte:
		return strings.TrimSpace(string(s)) != ""
	default:
		return true
	}
}
