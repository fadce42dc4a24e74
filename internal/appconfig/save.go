package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mwiater/docqa/internal/util"
)

// Save writes cfg as YAML to path. An existing file is only replaced when
// overwrite is set.
func Save(path string, cfg Config, overwrite bool) error {
	if path == "" {
		path = DefaultConfigPath
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := util.WriteFile(path, data); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
