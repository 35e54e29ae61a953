package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuthMode(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		want    AuthMode
		wantErr bool
	}{
		{name: "default is session", env: "", want: AuthModeSession},
		{name: "session", env: "session", want: AuthModeSession},
		{name: "register upper case", env: "REGISTER", want: AuthModeRegister},
		{name: "unknown", env: "oauth", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOOKADMIN_AUTH_MODE", tt.env)
			got, err := GetAuthMode()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogLevelFollowsDebug(t *testing.T) {
	t.Setenv("BOOKADMIN_DEBUG", "true")
	t.Setenv("BOOKADMIN_LOG_LEVEL", "error")
	assert.Equal(t, Debug, GetLogLevel())

	t.Setenv("BOOKADMIN_DEBUG", "")
	assert.Equal(t, Error, GetLogLevel())

	t.Setenv("BOOKADMIN_LOG_LEVEL", "")
	assert.Equal(t, Info, GetLogLevel())
}

func TestLoadEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BOOKADMIN_LOG_FOLDER=/from/file\nBOOKADMIN_DB_FOLDER=/db/from/file\n"), 0o600))

	t.Setenv("BOOKADMIN_LOG_FOLDER", "/from/env")
	t.Setenv("BOOKADMIN_DB_FOLDER", "")
	os.Unsetenv("BOOKADMIN_DB_FOLDER")

	require.NoError(t, LoadEnv(envFile))
	assert.Equal(t, "/from/env", GetLogFolder())
	assert.Equal(t, "/db/from/file", GetDBFolderPath())

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadDatabaseConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOOKADMIN_DB_FOLDER", dir)

	c, err := LoadDatabaseConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.True(t, c.IsSQLite())
	assert.Equal(t, filepath.Join(dir, "bookadmin.db"), c.GetDSN())

	path := filepath.Join(dir, "bookadmin.toml")
	content := `
[database]
type = "postgres"

[database.postgres]
host = "db.internal"
port = 5433
database = "books"
username = "admin"
password = "s3cret"
ssl_mode = "require"
time_zone = "UTC"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err = LoadDatabaseConfig(path)
	require.NoError(t, err)
	assert.True(t, c.IsPostgreSQL())
	assert.Equal(t, "host=db.internal user=admin password=s3cret dbname=books port=5433 sslmode=require TimeZone=UTC", c.GetDSN())
}

func TestLoadDatabaseConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookadmin.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database]\ntype = \"mongo\"\n"), 0o600))

	_, err := LoadDatabaseConfig(path)
	assert.Error(t, err)
}
