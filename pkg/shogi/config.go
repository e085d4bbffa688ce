package shogi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds defaults for the command-line tools. Flags override it.
type Config struct {
	Depth   int    `json:"depth"`
	Workers int    `json:"workers"`
	SFEN    string `json:"sfen"`
	Output  string `json:"output"`
}

func DefaultConfig() Config {
	return Config{Depth: 3, SFEN: StandardSFEN}
}

// FindConfigPath walks up from the working directory looking for
// config.json. It returns the file and its directory.
func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	dir := cwd
	for {
		path := filepath.Join(dir, "config.json")
		if _, err := os.Stat(path); err == nil {
			return path, filepath.Dir(path), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", fmt.Errorf("config.json not found from %s", cwd)
}

// LoadConfig reads path over DefaultConfig, so absent fields keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Depth < 0 || cfg.Workers < 0 {
		return Config{}, fmt.Errorf("%s: depth and workers must not be negative", path)
	}
	return cfg, nil
}
