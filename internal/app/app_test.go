package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/timeliness/internal/config"
	"github.com/specialistvlad/timeliness/internal/hcl_adapter"
	"github.com/specialistvlad/timeliness/internal/inmemoryrecords"
	"github.com/specialistvlad/timeliness/internal/sqlrecords"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      Config
		want    Config
		wantErr string
	}{
		{name: "defaults", in: Config{}, want: Config{LogFormat: "text", LogLevel: "info"}},
		{name: "normalised", in: Config{LogFormat: "JSON", LogLevel: "Debug"}, want: Config{LogFormat: "json", LogLevel: "debug"}},
		{name: "bad format", in: Config{LogFormat: "xml"}, wantErr: "invalid log-format"},
		{name: "bad level", in: Config{LogLevel: "trace"}, wantErr: "invalid log-level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestNewApp_Defaults(t *testing.T) {
	a, logs := setupAppTest(t, "")

	assert.Equal(t, config.DriverMemory, a.Config().Storage.Driver)
	assert.IsType(t, &inmemoryrecords.Store{}, a.Store())
	assert.Contains(t, logs.String(), "Record store opened.")
}

func TestNewApp_SQLiteStorage(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "records.db")
	a, _ := setupAppTest(t, `
storage {
  driver = "sqlite"
  dsn    = "`+filepath.ToSlash(dsn)+`"
}
`)
	assert.IsType(t, &sqlrecords.Store{}, a.Store())
}

func TestNewApp_InvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.hcl")
	require.NoError(t, writeFile(path, `collapse {`))

	cfg, err := NewConfig(Config{ConfigPaths: []string{path}})
	require.NoError(t, err)

	_, err = NewApp(context.Background(), &bytes.Buffer{}, cfg, hcl_adapter.NewLoader())
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("bogus", "bogus", &buf).Info("fallback")
	assert.Contains(t, buf.String(), "msg=fallback")
}
