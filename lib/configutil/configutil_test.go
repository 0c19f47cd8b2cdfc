package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Url      string `json:"url"`
	Database string `json:"database"`
	Interval int    `json:"interval_minutes"`
}

func writeFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "refuel.json5"), `{
		// json5 allows comments
		url: "https://example.com/prices",
		database: "refuel.db",
		interval_minutes: 20,
	}`)
	writeFile(t, filepath.Join(dir, "refuel.local.json5"), `{ database: "local.db" }`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "refuel.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Url:      "https://example.com/prices",
		Database: "local.db",
		Interval: 20,
	}, config)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "refuel.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)

	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0777))
	writeFile(t, filepath.Join(dir, "refuel_test_config.json5"), `{ url: "https://example.com" }`)
	require.NoError(t, os.Chdir(nested))

	config, path, err := ReadRecursively[testConfig]("refuel_test_config.json5")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", config.Url)
	require.Equal(t, "refuel_test_config.json5", filepath.Base(path))

	_, _, err = ReadRecursively[testConfig]("refuel_config_that_does_not_exist.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "refuel.local.json5"), `{ interval_minutes: 5 }`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "refuel.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{Interval: 5}, config)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "refuel.json5"), `{ url: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "refuel.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLocalOverridePath(t *testing.T) {
	require.Equal(t, filepath.Join("etc", "refuel.local.json5"), localOverridePath(filepath.Join("etc", "refuel.json5")))
	require.Equal(t, "telemetry.local", localOverridePath("telemetry"))
}
