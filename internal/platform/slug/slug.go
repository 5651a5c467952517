package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Unique returns a slug of input not yet present in taken and records it.
// Empty titles fall back to the given prefix.
func Unique(input, fallback string, taken map[string]struct{}) string {
	base := Make(input)
	if base == "" {
		base = fallback
	}
	candidate := base
	for n := 2; ; n++ {
		if _, ok := taken[candidate]; !ok {
			break
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
	taken[candidate] = struct{}{}
	return candidate
}
