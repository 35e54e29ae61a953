// Package config reads the runtime configuration of the bookadmin panel from the
// environment, an optional .env file and an optional TOML file next to the database.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// AuthMode selects which login flow guards the admin panel.
type AuthMode string

const (
	// AuthModeSession logs in the fixed demo identity #1 on GET /login.
	AuthModeSession AuthMode = "session"
	// AuthModeRegister enables registration and credential login.
	AuthModeRegister AuthMode = "register"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

// LoadEnv preloads variables from the given .env files (or ./.env) without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("BOOKADMIN_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("BOOKADMIN_DEBUG") == "true"
}

func GetAuthMode() (AuthMode, error) {
	mode := AuthMode(strings.ToLower(os.Getenv("BOOKADMIN_AUTH_MODE")))
	switch mode {
	case "":
		return AuthModeSession, nil
	case AuthModeSession, AuthModeRegister:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown auth mode: %q", mode)
	}
}

// GetSecret returns the externally supplied session secret, or "" when the
// persisted one should be used.
func GetSecret() string {
	return os.Getenv("BOOKADMIN_SECRET")
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("BOOKADMIN_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/bookadmin"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetConfigPath() string {
	return fmt.Sprintf("%s/%s.toml", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("BOOKADMIN_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}
