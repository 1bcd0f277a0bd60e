package vanilla

import (
	"strconv"
	"strings"
)

func controlID(formID string, parts ...string) string {
	segments := append([]string{"cf", formID}, parts...)
	return strings.ReplaceAll(strings.Join(segments, "-"), "_", "-")
}

// sanitizeClassList drops the reserved cf- prefix so callers cannot spoof
// chrome classes.
func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "cf-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

func textareaRows(hints map[string]string) int {
	rows, err := strconv.Atoi(strings.TrimSpace(hints["rows"]))
	if err != nil || rows < 1 || rows > 20 {
		return 4
	}
	return rows
}
