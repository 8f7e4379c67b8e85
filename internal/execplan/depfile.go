package execplan

import (
	"os"
	"strings"
)

// parseDepFile reads a Makefile-style dependency file (the output of
// `-MMD -MF <path>`) and returns every path listed on the right-hand
// side of the rule: the source file and every header the compiler
// reported as included. This becomes the new closed include set for the
// TU's next cache entry.
//
// The format is `target: dep1 dep2 \` with backslash-newline
// continuations; targets and deps may contain escaped spaces ("\ ").
func parseDepFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	joined := strings.ReplaceAll(string(data), "\\\n", " ")
	colon := strings.IndexByte(joined, ':')
	if colon < 0 {
		return nil, nil
	}
	rhs := joined[colon+1:]

	var deps []string
	seen := make(map[string]bool)
	for _, tok := range splitDepFields(rhs) {
		if tok == "" || tok == "\\" {
			continue
		}
		if !seen[tok] {
			seen[tok] = true
			deps = append(deps, tok)
		}
	}
	return deps, nil
}

// splitDepFields splits on unescaped whitespace, unescaping "\ " into a
// literal space within one field.
func splitDepFields(s string) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == ' ':
			cur.WriteByte(' ')
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}
