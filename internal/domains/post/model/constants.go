package model

// Categories is the canonical category enumeration, shared by every write
// path, the listing filter and the content generator. UI subsets are a client
// concern; the contract is this list.
var Categories = []string{
	"tech",
	"lifestyle",
	"education",
	"news",
	"health",
	"travel",
	"food",
	"finance",
	"entertainment",
	"sports",
	"science",
	"art",
	"opinion",
	"diy",
	"culture",
}

// IsValidCategory checks enum membership.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// categoryValues adapts Categories for ozzo's validation.In.
func categoryValues() []interface{} {
	values := make([]interface{}, len(Categories))
	for i, c := range Categories {
		values[i] = c
	}
	return values
}
