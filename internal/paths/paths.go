// Package paths locates the till configuration directory, the files inside
// it and the data directory that holds the database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration directory.
const AppName = "till"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else names one.
const DefaultDataDirName = ".till-db"

// Environment variables that override directory resolution.
const (
	EnvConfigDir = "TILL_CONFIG_DIR"
	EnvDataDir   = "TILL_DATA_DIR"
)

// Files kept in the configuration directory.
const (
	ConfigFileName = "config.yaml"
	EnvFileName    = ".env"
)

// lookups can be replaced in tests.
var lookups = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/till, else ~/.config/till
// Others:  os.UserConfigDir()/till
func DefaultConfigDir() (string, error) {
	if lookups.goos != "linux" {
		dir, err := lookups.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := lookups.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// TILL_CONFIG_DIR, then DefaultConfigDir. Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory: flag, then the data_dir value
// from config.yaml, then TILL_DATA_DIR, then $(CWD)/.till-db.
func ResolveDataDir(flag, configured string) (string, error) {
	if dir := firstNonEmpty(flag, configured, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// EnvFile returns the path of the optional .env file inside configDir.
func EnvFile(configDir string) string {
	return filepath.Join(configDir, EnvFileName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
