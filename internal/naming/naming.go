package naming

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nonAlphaNum = regexp.MustCompile(`[^0-9A-Za-z]+`)
	// Words TypeScript rejects as a type alias name.
	reserved = map[string]struct{}{
		"any": {}, "bigint": {}, "boolean": {}, "break": {}, "case": {}, "catch": {},
		"class": {}, "const": {}, "continue": {}, "debugger": {}, "default": {}, "delete": {},
		"do": {}, "else": {}, "enum": {}, "export": {}, "extends": {}, "false": {},
		"finally": {}, "for": {}, "function": {}, "if": {}, "import": {}, "in": {},
		"instanceof": {}, "never": {}, "new": {}, "null": {}, "number": {}, "object": {},
		"return": {}, "string": {}, "super": {}, "switch": {}, "symbol": {}, "this": {},
		"throw": {}, "true": {}, "try": {}, "typeof": {}, "undefined": {}, "unknown": {},
		"var": {}, "void": {}, "while": {}, "with": {},
	}
)

// PascalCase converts any string into PascalCase.
func PascalCase(input string) string {
	parts := splitIntoWords(input)
	if len(parts) == 0 {
		return "Value"
	}

	var builder strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteString(strings.ToUpper(part[:1]))
		if len(part) > 1 {
			builder.WriteString(strings.ToLower(part[1:]))
		}
	}

	return sanitizeLeadingCharacter(builder.String())
}

// CamelCase converts any string into camelCase.
func CamelCase(input string) string {
	pascal := PascalCase(input)
	if pascal == "" {
		return "value"
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// PropertyName keeps a schema property name as written unless it cannot
// be a bare identifier: dashed names become camelCase and a leading digit
// gets an underscore.
func PropertyName(input string) string {
	if strings.Contains(input, "-") {
		return CamelCase(input)
	}
	return sanitizeLeadingCharacter(input)
}

// TypeName is PropertyName for type alias names, which additionally must
// not collide with reserved words.
func TypeName(input string) string {
	return ensureNotReserved(PropertyName(input))
}

func splitIntoWords(input string) []string {
	clean := nonAlphaNum.ReplaceAllString(input, " ")
	fields := strings.Fields(clean)
	if len(fields) == 0 && input != "" {
		return []string{input}
	}

	var result []string
	for _, field := range fields {
		result = append(result, splitCamel(field)...)
	}
	return result
}

func sanitizeLeadingCharacter(input string) string {
	if input == "" {
		return "Value"
	}
	runes := []rune(input)
	if unicode.IsDigit(runes[0]) {
		return "_" + input
	}
	return input
}

func ensureNotReserved(name string) string {
	if _, found := reserved[name]; found {
		return name + "Value"
	}
	return name
}

func splitCamel(word string) []string {
	if word == "" {
		return nil
	}
	runes := []rune(word)
	if len(runes) == 1 {
		return []string{word}
	}

	start := 0
	var parts []string
	for i := 1; i < len(runes); i++ {
		prev := runes[i-1]
		curr := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		if shouldSplit(prev, curr, next) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

func shouldSplit(prev, curr, next rune) bool {
	if unicode.IsDigit(curr) && !unicode.IsDigit(prev) {
		return true
	}
	if unicode.IsUpper(curr) && !unicode.IsUpper(prev) {
		return true
	}
	if unicode.IsUpper(curr) && unicode.IsUpper(prev) && next != 0 && unicode.IsLower(next) {
		return true
	}
	return false
}
