package manifest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

var clauseRegex = regexp.MustCompile(`^(===|~=|==|!=|<=|>=|<|>)(\S+)$`)

// NormalizeSpecifier validates a comma-separated version specifier and
// returns its canonical text: whitespace removed, clauses sorted and
// joined with ",". Two specifiers denote the same constraint set exactly
// when their normalized forms are equal. An empty input stays empty.
func NormalizeSpecifier(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "(") && strings.HasSuffix(spec, ")") {
		spec = strings.TrimSpace(spec[1 : len(spec)-1])
	}
	if spec == "" {
		return "", nil
	}

	parts := strings.Split(spec, ",")
	clauses := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		clause := strings.Join(strings.Fields(part), "")
		if clause == "" {
			return "", fmt.Errorf("%w: empty clause in %q", ErrInvalidSpecifier, spec)
		}
		m := clauseRegex.FindStringSubmatch(clause)
		if m == nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidSpecifier, clause)
		}
		// "===" is arbitrary string equality and needs no version grammar
		if m[1] != "===" {
			if _, err := pep440.NewSpecifiers(clause); err != nil {
				return "", fmt.Errorf("%w: %q: %v", ErrInvalidSpecifier, clause, err)
			}
		}
		if !seen[clause] {
			seen[clause] = true
			clauses = append(clauses, clause)
		}
	}

	sort.Strings(clauses)
	return strings.Join(clauses, ","), nil
}
