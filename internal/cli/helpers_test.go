package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type testEnv struct {
	data string
	work string
}

// setupTestEnv points rip at a temporary data directory with no settings
// file and no interactive picker.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &testEnv{
		data: filepath.Join(tmpDir, "data"),
		work: filepath.Join(tmpDir, "work"),
	}
	if err := os.MkdirAll(env.work, 0755); err != nil {
		t.Fatalf("failed to create work dir: %v", err)
	}

	t.Setenv("RIP_DATA_DIR", env.data)
	t.Setenv("RIP_CONFIG", filepath.Join(tmpDir, "config.yaml"))
	t.Setenv("RIP_PICKER", "none")
	t.Setenv("RIP_HISTORY", "true")
	t.Setenv("RIP_LOG_LEVEL", "error")
	return env
}

func (e *testEnv) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.work, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func (e *testEnv) graveyard() string {
	return filepath.Join(e.data, "graveyard")
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes rip with args and stdin and returns its output and exit code.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	code := Execute()
	return stdout.String(), stderr.String(), code
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
