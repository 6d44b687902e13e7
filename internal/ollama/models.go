package ollama

import (
	"fmt"
	"strings"
)

// ResolveModel maps a spoken model reference onto one installed model.
// Exact names win; otherwise a case-insensitive substring match must be
// unique, or the caller gets the candidate list back in the error.
func ResolveModel(requested string, installed []Model) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", fmt.Errorf("no model name given")
	}

	for _, m := range installed {
		if m.Name == requested {
			return m.Name, nil
		}
	}

	needle := strings.ToLower(requested)
	var candidates []string
	for _, m := range installed {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			candidates = append(candidates, m.Name)
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no installed model matches %q", requested)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous, matches %s", requested, strings.Join(candidates, ", "))
	}
}
