package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultDBFile = "meal_max.db"
)

// CheckExists verifies if the datastore exists at the given path.
// Returns true if the store exists, false otherwise.
func CheckExists(dbPath string) (bool, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check store existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("datastore path is a directory, expected file: %s", dbPath)
	}
	return true, nil
}

// GetDBPath returns the full path to the database file in storePath.
func GetDBPath(storePath string) string {
	return filepath.Join(storePath, DefaultDBFile)
}

// ReadCreateTableScript loads the DDL used to (re)create the meals table.
func ReadCreateTableScript(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("create table script path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read create table script: %w", err)
	}
	script := string(data)
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("create table script %s is empty", path)
	}
	return script, nil
}
