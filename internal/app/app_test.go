package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdb/gisdb/internal/config"
	"github.com/gisdb/gisdb/internal/manifest"
)

const features = "FEATURE_ID|FEATURE_NAME|FEATURE_CLASS|STATE_ALPHA|STATE_NUMERIC|COUNTY_NAME|COUNTY_NUMERIC|PRIMARY_LAT_DMS|PRIM_LONG_DMS\n" +
	"1481852|Blue Grass|Populated Place|VA|51|Highland|091|383000N|0793259W\n"

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VA.txt"), []byte(features), 0644))

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Storage.Path = dir
	return cfg, dir
}

func writeScript(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "script.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestApp_Run(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Manifest.Enabled = true

	a, err := New(cfg)
	require.NoError(t, err)

	script := writeScript(t, dir,
		"world\t0794500W\t0792000W\t381500N\t383500N",
		"import\tVA.txt",
		"what_is\tBlue Grass\tVA",
		"quit")
	logPath := filepath.Join(dir, "log.txt")
	require.NoError(t, a.Run(context.Background(), script, logPath))

	out, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "dbFile:\t"+cfg.Database.Path+"\n")
	assert.Contains(t, string(out), "\t0:\tHighland  (79d 32m 59s West, 38d 30m 0s North)\n")
	assert.FileExists(t, filepath.Join(cfg.DataDir, "records.txt"))

	catalog, err := manifest.NewCatalog(cfg.Manifest.Path)
	require.NoError(t, err)
	defer catalog.Close()
	imports, err := catalog.ListImports(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, imports, 1)
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Type = "ftp"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestApp_MissingScript(t *testing.T) {
	cfg, dir := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)
	err = a.Run(context.Background(), filepath.Join(dir, "nope.txt"), filepath.Join(dir, "log.txt"))
	assert.Error(t, err)
}
