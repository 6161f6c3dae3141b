package models

import "strings"

// DepartmentPath is an ordered 1-3 token list from organisational root
// toward the leaf. It is stored as a canonical JSON array (via GORM's JSON
// serializer) rather than the raw delimited string the source workbook
// carries, per §4.1's normalisation rule.
//
// Per §9's design note on the department forest: this package deliberately
// does NOT give departments parent pointers. A path is a flat, ordered
// list; the forest structure (which level-2 names belong under which
// level-1 name, and so on) is derived by the aggregator from the set of
// paths present in a query's rows, not stored on the row itself.
type DepartmentPath []string

// unknownDepartment is what an empty or unparsable department path becomes,
// per §4.1 ("Empty path becomes [\"未知\"]").
var unknownDepartment = DepartmentPath{"未知"}

// departmentDelimiters lists every token separator the source workbook may
// use for a department path collapsed into a single string.
const departmentDelimiters = "/\\-><"

// NewDepartmentPath splits a raw department-path string on any of the
// accepted delimiters, trims whitespace, drops empty tokens, and clamps the
// result to the first three tokens from root. An empty or all-empty input
// becomes the synthetic unknown department.
func NewDepartmentPath(raw string) DepartmentPath {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(departmentDelimiters, r)
	})

	path := make(DepartmentPath, 0, 3)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		path = append(path, tok)
		if len(path) == 3 {
			break
		}
	}

	if len(path) == 0 {
		return unknownDepartment
	}
	return path
}

// Level1 returns the root token, or "" if the path is empty.
func (p DepartmentPath) Level1() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Level2 returns the first two tokens joined with "/", padded with nothing
// if the path is shorter than two tokens (it returns "" in that case, per
// the glossary's "padded with null at the leaf levels" rule).
func (p DepartmentPath) Level2() string {
	if len(p) < 2 {
		return ""
	}
	return strings.Join(p[:2], "/")
}

// Level3 returns the full three-token path joined with "/", or "" if the
// path is shorter than three tokens.
func (p DepartmentPath) Level3() string {
	if len(p) < 3 {
		return ""
	}
	return strings.Join(p[:3], "/")
}

// AtLevel returns the department key at the given level (1, 2, or 3),
// or "" if the path doesn't reach that depth.
func (p DepartmentPath) AtLevel(level int) string {
	switch level {
	case 1:
		return p.Level1()
	case 2:
		return p.Level2()
	case 3:
		return p.Level3()
	default:
		return ""
	}
}
