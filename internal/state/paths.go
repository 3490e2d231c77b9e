package state

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigDirName is the root directory name for ytinu configuration
	ConfigDirName = "ytinu"

	// File names
	ConfigFileName  = "config.yaml"
	StateFileName   = "data.json"
	HistoryFileName = "history.db"
	BackupsDirName  = "backups"

	// Suffixes of files kept next to the state file
	LockSuffix      = ".lock"
	BackupSuffix    = ".bkp"
	CorruptedSuffix = ".corrupted"
)

// GetConfigDir returns the path to the ytinu configuration directory.
// It defaults to ~/.config/ytinu/ and honours XDG_CONFIG_HOME.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the path to the main configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetStatePath returns the path to the mod manager state file.
func GetStatePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, StateFileName), nil
}

// GetHistoryPath returns the path to the history database.
func GetHistoryPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, HistoryFileName), nil
}

// GetBackupsDir returns the directory holding state archives.
func GetBackupsDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, BackupsDirName), nil
}

// LockPath returns the advisory lock file guarding path.
func LockPath(path string) string {
	return path + LockSuffix
}

// BackupPath returns the backup kept for path while it is rewritten.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// InitDirs creates the ytinu configuration directory.
func InitDirs() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}
	return EnsureDir(configDir)
}

// EnsureDir ensures that a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory %s: %w", path, err)
	}
	return nil
}
