package config

import (
	"os"
	"path/filepath"
	"strings"
)

// baseDir is where relative runtime directories are anchored: the directory of
// the resolved executable, else the working directory.
func baseDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func resolve(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(baseDir(), target)
}

// MediaDir is the absolute directory of the local media driver.
func (c *AppConfig) MediaDir() string { return resolve(c.Media.Local.Dir, defaultMediaLocalDir) }

// LogDir is the absolute daily-log directory, or "" when file logging is off.
func (c *AppConfig) LogDir() string {
	if strings.TrimSpace(c.Log.Dir) == "" {
		return ""
	}
	return resolve(c.Log.Dir, "logs")
}

// AdminDir is the absolute admin bundle directory, or "" when the admin UI is not served.
func (c *AppConfig) AdminDir() string {
	if strings.TrimSpace(c.Auth.AdminDir) == "" {
		return ""
	}
	return resolve(c.Auth.AdminDir, "admin")
}
