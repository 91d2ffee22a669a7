package ocrlang

import (
	"fmt"
	"strings"
)

type language struct {
	code    string   // Tesseract traineddata name
	iso2    string   // ISO 639-1
	aliases []string // ISO 639-2 variants and English names
	display string
}

var languages = []language{
	{"eng", "en", []string{"english"}, "English"},
	{"fra", "fr", []string{"fre", "french"}, "French"},
	{"deu", "de", []string{"ger", "german"}, "German"},
	{"spa", "es", []string{"spanish"}, "Spanish"},
	{"ita", "it", []string{"italian"}, "Italian"},
	{"por", "pt", []string{"portuguese"}, "Portuguese"},
	{"nld", "nl", []string{"dut", "dutch"}, "Dutch"},
	{"jpn", "ja", []string{"japanese"}, "Japanese"},
	{"kor", "ko", []string{"korean"}, "Korean"},
	{"chi_sim", "zh", []string{"zho", "chi", "chinese"}, "Chinese (Simplified)"},
	{"chi_tra", "", []string{"chinese_traditional"}, "Chinese (Traditional)"},
	{"rus", "ru", []string{"russian"}, "Russian"},
	{"ara", "ar", []string{"arabic"}, "Arabic"},
	{"pol", "pl", []string{"polish"}, "Polish"},
	{"swe", "sv", []string{"swedish"}, "Swedish"},
	{"dan", "da", []string{"danish"}, "Danish"},
	{"nor", "no", []string{"norwegian"}, "Norwegian"},
	{"fin", "fi", []string{"finnish"}, "Finnish"},
}

var index = buildIndex()

func buildIndex() map[string]*language {
	idx := make(map[string]*language, len(languages)*3)
	for i := range languages {
		lang := &languages[i]
		idx[lang.code] = lang
		if lang.iso2 != "" {
			idx[lang.iso2] = lang
		}
		for _, alias := range lang.aliases {
			idx[alias] = lang
		}
	}
	return idx
}

func lookup(token string) *language {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return nil
	}
	return index[strings.ReplaceAll(token, " ", "_")]
}

// Normalize rewrites spec into canonical Tesseract codes, dropping repeats
// and keeping order. Unknown three-letter codes pass through since Tesseract
// ships many more languages than are listed here.
func Normalize(spec string) (string, error) {
	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == '+' || r == ',' })
	if len(parts) == 0 {
		return "", fmt.Errorf("ocr language is empty")
	}
	codes := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		code := token
		if lang := lookup(token); lang != nil {
			code = lang.code
		} else if !isTesseractCode(token) {
			return "", fmt.Errorf("unknown ocr language %q", strings.TrimSpace(part))
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return "", fmt.Errorf("ocr language is empty")
	}
	return strings.Join(codes, "+"), nil
}

// isTesseractCode accepts "abc" and "abc_xyz" shaped names.
func isTesseractCode(token string) bool {
	base, variant, hasVariant := strings.Cut(token, "_")
	if len(base) != 3 || !isLower(base) {
		return false
	}
	return !hasVariant || (variant != "" && isLower(variant))
}

func isLower(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Describe renders spec for display, e.g. "French + English". Unrecognized
// codes are shown upper-cased.
func Describe(spec string) string {
	parts := strings.Split(spec, "+")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lang := lookup(part); lang != nil {
			names = append(names, lang.display)
			continue
		}
		names = append(names, strings.ToUpper(part))
	}
	if len(names) == 0 {
		return "Unknown"
	}
	return strings.Join(names, " + ")
}
