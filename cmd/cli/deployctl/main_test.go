package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv writes a settings file pointing the store into a temp dir
func testEnv(t *testing.T) (dir string, settingsPath string) {
	t.Helper()
	dir = t.TempDir()
	settingsPath = filepath.Join(dir, "deployctl.yaml")
	content := "log:\n  level: error\n  format: json\nstore:\n  dsn: " + filepath.ToSlash(filepath.Join(dir, "options.db")) + "\n"
	require.NoError(t, os.WriteFile(settingsPath, []byte(content), 0600))
	return dir, settingsPath
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRun_Show(t *testing.T) {
	dir, settings := testEnv(t)
	file := writeFile(t, dir, "options.yaml", "instances: 1\nworker: true\nredeployScanPeriod: 250\n")

	var out bytes.Buffer
	code := run([]string{"--config", settings, "show", "-f", file}, &out)

	assert.Equal(t, 0, code)
	assert.Equal(t, "{\"worker\":true}\n", out.String())
}

func TestRun_ShowYAML(t *testing.T) {
	dir, settings := testEnv(t)
	file := writeFile(t, dir, "options.json", `{"ha": true}`)

	var out bytes.Buffer
	code := run([]string{"--config", settings, "show", "-f", file, "--format", "yaml"}, &out)

	assert.Equal(t, 0, code)
	assert.Equal(t, "ha: true\n", out.String())
}

func TestRun_ShowInvalidFile(t *testing.T) {
	dir, settings := testEnv(t)
	file := writeFile(t, dir, "options.json", `{"redeployGracePeriod": 0}`)

	var out bytes.Buffer
	code := run([]string{"--config", settings, "show", "-f", file}, &out)
	assert.Equal(t, 2, code)
}

func TestRun_Equal(t *testing.T) {
	dir, settings := testEnv(t)
	a := writeFile(t, dir, "a.json", `{"instances": 2, "config": {"port": 8080}}`)
	b := writeFile(t, dir, "b.yaml", "config:\n  port: 8080\ninstances: 2\n")
	c := writeFile(t, dir, "c.json", `{"instances": 3}`)

	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"--config", settings, "equal", a, b}, &out))
	assert.Equal(t, "equal\n", out.String())

	out.Reset()
	assert.Equal(t, 1, run([]string{"--config", settings, "equal", a, c}, &out))
	assert.Equal(t, "different\n", out.String())
}

func TestRun_Validate(t *testing.T) {
	dir, settings := testEnv(t)
	file := writeFile(t, dir, "deployments.yaml", `
deployments:
  - name: api
    unit: api.Main
    options:
      instances: 2
  - name: old
    unit: old.Main
    enabled: false
`)

	var out bytes.Buffer
	code := run([]string{"--config", settings, "validate", "-f", file}, &out)

	assert.Equal(t, 0, code)
	assert.Equal(t, "api\tapi.Main\t{\"instances\":2}\n", out.String())

	bad := writeFile(t, dir, "bad.yaml", "deployments:\n  - name: api\n")
	assert.Equal(t, 2, run([]string{"--config", settings, "validate", "-f", bad}, &out))
}

func TestRun_StoreCommands(t *testing.T) {
	dir, settings := testEnv(t)
	file := writeFile(t, dir, "options.json", `{"instances": 4, "extraClasspath": ["a.jar"]}`)

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"--config", settings, "save", "-n", "api", "-f", file}, &out))
	assert.Equal(t, "api\trevision 1\tchanged true\n", out.String())

	out.Reset()
	require.Equal(t, 0, run([]string{"--config", settings, "save", "-n", "api", "-f", file}, &out))
	assert.Equal(t, "api\trevision 1\tchanged false\n", out.String())

	out.Reset()
	require.Equal(t, 0, run([]string{"--config", settings, "get", "-n", "api"}, &out))
	assert.Equal(t, "{\"extraClasspath\":[\"a.jar\"],\"instances\":4}\n", out.String())

	out.Reset()
	require.Equal(t, 0, run([]string{"--config", settings, "list"}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "api\t1\t"))

	require.Equal(t, 0, run([]string{"--config", settings, "delete", "-n", "api"}, &out))
	assert.Equal(t, 2, run([]string{"--config", settings, "get", "-n", "api"}, &out))
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"--help"}, &out))
	assert.Contains(t, out.String(), "show")
}

func TestRun_MissingCommand(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{}, &out))
}
