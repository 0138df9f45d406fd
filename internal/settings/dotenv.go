package settings

import (
	"bufio"
	"strings"

	"github.com/hashicorp/go-envparse"
)

// ParseDotenv parses KEY=VALUE lines. Blank lines and lines starting with '#'
// are skipped. Each line is parsed on its own, so a malformed line is dropped
// without affecting the rest of the file. Values are taken literally; `$VAR`
// references are not expanded.
func ParseDotenv(content string) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := envparse.Parse(strings.NewReader(line))
		if err != nil {
			continue
		}
		for key, value := range parsed {
			values[key] = value
		}
	}
	return values
}
