package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/timeliness/internal/hcl_adapter"
	"github.com/specialistvlad/timeliness/internal/testutil"
	"github.com/stretchr/testify/require"
)

// setupAppTest creates an App from the given HCL configuration (empty for
// defaults) with debug logs captured in the returned buffer.
func setupAppTest(t *testing.T, hclConfig string) (*App, *testutil.SafeBuffer) {
	t.Helper()

	var paths []string
	if hclConfig != "" {
		dir := testutil.WriteFiles(t, map[string]string{"engine.hcl": hclConfig})
		paths = append(paths, filepath.Join(dir, "engine.hcl"))
	}

	cfg, err := NewConfig(Config{ConfigPaths: paths, LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	testutil.DumpLogs(t, logs)

	a, err := NewApp(context.Background(), logs, cfg, hcl_adapter.NewLoader())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, logs
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
