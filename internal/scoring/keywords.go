package scoring

import "strings"

// Bilingual watch list: disease names, severity terms, and location terms
// in English and Arabic. Matching is case-insensitive substring search and
// returns the matched literals, not categories.
var watchKeywords = []string{
	"outbreak", "epidemic", "pandemic", "H5N1", "MERS", "cholera", "dengue", "measles",
	"emergency", "alert", "deaths", "cases", "Saudi Arabia", "GCC", "Yemen", "Hajj",
	"تفشي", "وباء", "جائحة", "وفيات", "حالات", "السعودية", "طوارئ", "تنبيه",
}

// Detect returns the distinct watch-list keywords present in text.
// Pure and total: no input produces an error.
func Detect(text string) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, keyword := range watchKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return matched
}
