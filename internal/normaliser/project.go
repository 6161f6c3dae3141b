package normaliser

import (
	"regexp"
	"strings"
)

// projectFieldPattern extracts a leading numeric project code from the
// combined "<code> <name>" field the source workbook uses. Non-matching
// strings carry no code, just the original text as the name.
var projectFieldPattern = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)

// ParseProjectField splits the combined project field into (code, name).
// A fully blank field yields (nil, nil); a non-matching field yields
// (nil, original-text), per §4.1.
func ParseProjectField(raw string) (code *string, name *string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if m := projectFieldPattern.FindStringSubmatch(raw); m != nil {
		c, n := m[1], strings.TrimSpace(m[2])
		return &c, &n
	}

	return nil, &trimmed
}
