package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/factorygirl/factory"
)

const userFactory = `attributes:
  name: user_{{sequence}}
  email: user{{sequence(:email)}}@example.com
  admin: false
admin:
  admin: true
`

const initScript = `CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT,
  admin BOOLEAN,
  age INTEGER
);
DELETE FROM users;
DELETE FROM sqlite_sequence WHERE name = 'users';
`

type project struct {
	configPath string
	dbPath     string
}

func setupProject(t *testing.T, connectionID string) project {
	t.Helper()
	dir := t.TempDir()
	factories := filepath.Join(dir, "factories")
	require.NoError(t, os.Mkdir(factories, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(factories, "UserFactory.yaml"), []byte(userFactory), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(factories, "init.sql"), []byte(initScript), 0o600))

	p := project{
		configPath: filepath.Join(dir, "factorygirl.yml"),
		dbPath:     filepath.Join(dir, "test.db"),
	}
	cfg := fmt.Sprintf(`name: factorygirl
logging:
  level: error
databases:
  - name: db
    driver: sqlite
    dsn: %s
factory:
  base_path: %s
  connection_id: %s
`, p.dbPath, factories, connectionID)
	require.NoError(t, os.WriteFile(p.configPath, []byte(cfg), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func countUsers(t *testing.T, p project) int64 {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(p.dbPath), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var n int64
	require.NoError(t, db.Table("users").Count(&n).Error)
	return n
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "factorygirl ")
}

func TestListCmd(t *testing.T) {
	p := setupProject(t, "db")

	out, err := run(t, "--config", p.configPath, "list", "-o", "json")
	require.NoError(t, err)

	var infos []definitionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "User", infos[0].Class)
	assert.Equal(t, "users", infos[0].Table)
	assert.Equal(t, []string{"admin"}, infos[0].Aliases)
}

func TestAttributesCmd(t *testing.T) {
	p := setupProject(t, "db")

	out, err := run(t, "--config", p.configPath, "attributes", "User", "--alias", "admin", "--set", "age=30", "--set", "name=bob")
	require.NoError(t, err)

	var attrs map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &attrs))
	assert.Equal(t, map[string]any{"name": "bob", "email": "user0@example.com", "admin": true, "age": 30}, attrs)
}

func TestAttributesCmd_Errors(t *testing.T) {
	p := setupProject(t, "db")

	_, err := run(t, "--config", p.configPath, "attributes", "User", "--alias", "root")
	assert.ErrorIs(t, err, factory.ErrUnknownAlias)

	_, err = run(t, "--config", p.configPath, "attributes", "Ghost")
	assert.ErrorIs(t, err, factory.ErrUnknownFactory)

	_, err = run(t, "--config", p.configPath, "attributes", "User", "--set", "novalue")
	assert.Error(t, err)

	_, err = run(t, "--config", p.configPath, "-o", "xml", "list")
	assert.Error(t, err)
}

func TestPrepareAndCreateCmd(t *testing.T) {
	p := setupProject(t, "db")

	out, err := run(t, "--config", p.configPath, "prepare")
	require.NoError(t, err)
	assert.Contains(t, out, "Prepared 1 factories")
	assert.Zero(t, countUsers(t, p))

	out, err = run(t, "--config", p.configPath, "create", "User", "-n", "2", "-o", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0]["id"])
	assert.Equal(t, "user_0", rows[0]["name"])
	assert.Equal(t, float64(2), rows[1]["id"])
	assert.Equal(t, "user1@example.com", rows[1]["email"])
	assert.Equal(t, int64(2), countUsers(t, p))

	_, err = run(t, "--config", p.configPath, "create", "User", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(1), countUsers(t, p), "create prepares the tables first")
}

func TestTruncateCmd(t *testing.T) {
	p := setupProject(t, "db")
	_, err := run(t, "--config", p.configPath, "create", "User", "-n", "3")
	require.NoError(t, err)
	require.Equal(t, int64(3), countUsers(t, p))

	out, err := run(t, "--config", p.configPath, "truncate", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Truncated users")
	assert.Zero(t, countUsers(t, p))

	_, err = run(t, "--config", p.configPath, "create", "User")
	require.NoError(t, err)
	_, err = run(t, "--config", p.configPath, "truncate", "--all")
	require.NoError(t, err)
	assert.Zero(t, countUsers(t, p))

	_, err = run(t, "--config", p.configPath, "truncate")
	assert.Error(t, err)
	_, err = run(t, "--config", p.configPath, "truncate", "--all", "users")
	assert.Error(t, err)
	_, err = run(t, "--config", p.configPath, "truncate", "missing")
	assert.ErrorIs(t, err, factory.ErrTableNotFound)
}

func TestCreateCmd_InvalidConnection(t *testing.T) {
	p := setupProject(t, "reporting")

	_, err := run(t, "--config", p.configPath, "create", "User")
	assert.ErrorIs(t, err, factory.ErrConfiguration)
}

func TestParseOverrides(t *testing.T) {
	attrs, err := parseOverrides([]string{"age=30", "admin=true", "name=bob", "nick=", "note= a=b", "tags=[a, b]"})
	require.NoError(t, err)

	assert.Equal(t, factory.Attributes{
		"age":   30,
		"admin": true,
		"name":  "bob",
		"nick":  "",
		"note":  "a=b",
		"tags":  []any{"a", "b"},
	}, attrs)

	_, err = parseOverrides([]string{"=1"})
	assert.Error(t, err)
}
