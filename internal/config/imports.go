package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tensorplex-labs/taskforge/internal/codeunit"
)

// ImportTableFile is the on-disk form of an identifier to import table.
//
//	replace: false
//	imports:
//	  Widget: "import com.example.Widget;"
type ImportTableFile struct {
	Replace bool              `yaml:"replace"`
	Imports map[string]string `yaml:"imports"`
}

// LoadImportTable returns base extended (or replaced) by the table in path.
// An empty path returns base unchanged.
func LoadImportTable(path string, base codeunit.ImportTable) (codeunit.ImportTable, error) {
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import table: %w", err)
	}
	var f ImportTableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse import table %s: %w", path, err)
	}
	if len(f.Imports) == 0 {
		return nil, fmt.Errorf("import table %s has no imports", path)
	}
	if f.Replace {
		return codeunit.ImportTable(f.Imports), nil
	}
	return base.Merge(f.Imports), nil
}
