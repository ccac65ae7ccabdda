package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed *.yaml
var LevelsFS embed.FS

// LoadLevelFromFS loads one of the bundled levels. The extension is
// optional.
func LoadLevelFromFS(name string) (*Level, error) {
	if path.Ext(name) == "" {
		name += ".yaml"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	l, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal level %s: %w", name, err)
	}
	return l, nil
}

// BundledLevels lists the bundled level names without extension.
func BundledLevels() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	return names
}
