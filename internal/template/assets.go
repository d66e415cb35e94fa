package template

import (
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/starford/codesync/internal/version"
)

//go:embed templates/*.md
var templateFS embed.FS

// Render loads the embedded template by name and substitutes {{VAR}}
// placeholders. VERSION and DATE are always available; callers may add
// PROJECT_NAME and friends through vars.
func Render(name string, vars map[string]string) (string, error) {
	data, err := templateFS.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("template: unknown template %q: %w", name, err)
	}

	out := string(data)
	out = strings.ReplaceAll(out, "{{VERSION}}", version.Current)
	out = strings.ReplaceAll(out, "{{DATE}}", time.Now().Format("2006-01-02"))
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out, nil
}
