package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "COLLATZGRAPH_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "collatzgraph.yaml"
	// ConfigDirName is the per-user and system directory name
	ConfigDirName = "collatzgraph"

	dirFileName = "config.yaml"
	systemDir   = "/etc"
)

// userConfigDir is $XDG_CONFIG_HOME, else ~/.config, else "" when neither
// is known
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

// SearchPaths lists the candidate config files in lookup order: the
// $COLLATZGRAPH_CONFIG file, ./collatzgraph.yaml, the user config dir
// ($XDG_CONFIG_HOME or ~/.config) and /etc/collatzgraph/config.yaml.
// When XDG_CONFIG_HOME is set, ~/.config is searched after it.
func SearchPaths() []string {
	var paths []string
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}

	local := ConfigFileName
	if abs, err := filepath.Abs(local); err == nil {
		local = abs
	}
	paths = append(paths, local)

	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, dirFileName))
	}
	if home := os.Getenv("HOME"); home != "" && os.Getenv("XDG_CONFIG_HOME") != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, dirFileName))
	}
	return append(paths, filepath.Join(systemDir, ConfigDirName, dirFileName))
}

// FindConfigPath returns the first existing file of SearchPaths, or ""
func FindConfigPath() string {
	for _, path := range SearchPaths() {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// DefaultConfigPath is where a new config file goes: the user config dir,
// or the working directory when there is none
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, dirFileName)
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
