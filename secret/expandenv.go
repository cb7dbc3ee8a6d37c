package secret

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var bracedVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// escapeMarker temporarily stands in for "$$" so os.ExpandEnv does not
// see the dollar. NUL bytes cannot appear in environment values.
const escapeMarker = "\x00ialla:dollar\x00"

// ExpandEnvStrict expands $VAR and ${VAR} in s, writing "$$" as a
// literal dollar. Unlike os.ExpandEnv it fails when a ${VAR} names a
// variable missing from the environment, listing every missing name.
func ExpandEnvStrict(s string) (string, error) {
	escaped := strings.ReplaceAll(s, "$$", escapeMarker)

	var missing []string
	seen := make(map[string]bool)
	for _, match := range bracedVarPattern.FindAllStringSubmatch(escaped, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(escaped), escapeMarker, "$"), nil
}
