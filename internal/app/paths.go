package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName = "ultraedge"
	dbFileName = "plans.db"
)

// DefaultDBPath honours ULTRAEDGE_DB before falling back to the user config dir.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ULTRAEDGE_DB"); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}

// DefaultBackupDir sits next to the database.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}
