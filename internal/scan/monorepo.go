package scan

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MonorepoInfo describes detected monorepo tooling.
type MonorepoInfo struct {
	Tool       string
	Patterns   []string // package globs, e.g. ["packages/*", "apps/*"]
	ConfigFile string
}

// toolNames maps tool identifiers to display names.
var toolNames = map[string]string{
	"npm-workspaces":  "npm Workspaces",
	"yarn-workspaces": "Yarn Workspaces",
	"pnpm":            "pnpm",
	"lerna":           "Lerna",
	"nx":              "Nx",
	"turbo":           "Turborepo",
	"rush":            "Rush",
}

// ToolName returns a human-readable name for a monorepo tool identifier.
func ToolName(tool string) string {
	if n, ok := toolNames[tool]; ok {
		return n
	}
	return tool
}

// DetectMonorepo inspects root for monorepo tooling. Checks are ordered
// from most to least specific; the first hit wins.
func DetectMonorepo(root string) (MonorepoInfo, bool) {
	if info, ok := detectPnpm(root); ok {
		return info, true
	}
	for _, cfg := range []struct{ file, tool string }{
		{"lerna.json", "lerna"},
		{"nx.json", "nx"},
		{"turbo.json", "turbo"},
		{"rush.json", "rush"},
	} {
		if exists(filepath.Join(root, cfg.file)) {
			return MonorepoInfo{Tool: cfg.tool, ConfigFile: cfg.file}, true
		}
	}
	if info, ok := detectNpmWorkspaces(root); ok {
		return info, true
	}
	return MonorepoInfo{}, false
}

func detectPnpm(root string) (MonorepoInfo, bool) {
	data, err := os.ReadFile(filepath.Join(root, "pnpm-workspace.yaml"))
	if err != nil {
		return MonorepoInfo{}, false
	}
	var ws struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return MonorepoInfo{}, false
	}
	return MonorepoInfo{
		Tool:       "pnpm",
		Patterns:   ws.Packages,
		ConfigFile: "pnpm-workspace.yaml",
	}, true
}

// detectNpmWorkspaces reads the workspaces field of package.json, which is
// either a bare glob array or an object with a packages array.
func detectNpmWorkspaces(root string) (MonorepoInfo, bool) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return MonorepoInfo{}, false
	}
	var pkg struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || len(pkg.Workspaces) == 0 {
		return MonorepoInfo{}, false
	}

	var patterns []string
	if err := json.Unmarshal(pkg.Workspaces, &patterns); err != nil {
		var obj struct {
			Packages []string `json:"packages"`
		}
		if err := json.Unmarshal(pkg.Workspaces, &obj); err != nil {
			return MonorepoInfo{}, false
		}
		patterns = obj.Packages
	}
	if len(patterns) == 0 {
		return MonorepoInfo{}, false
	}
	return MonorepoInfo{
		Tool:       "npm-workspaces",
		Patterns:   patterns,
		ConfigFile: "package.json",
	}, true
}
