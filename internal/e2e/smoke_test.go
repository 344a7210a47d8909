package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	steps := [][]string{
		{"session", "new", "General Assembly"},
		{"agenda", "set", "Ocean plastics"},
		{"roster", "set", "present", "France", "Japan", "Egypt"},
		{"resolution", "add", "A/1", "--title", "Clean seas", "--sponsor", "France"},
		{"resolution", "move", "A/1", "draft"},
		{"vote", "A/1", "--yes", "France,Japan", "--no", "Egypt"},
	}
	for _, args := range steps {
		_, stderr, err := runKamun(t, binaryPath, home, args...)
		require.NoError(t, err, "%s: %s", strings.Join(args, " "), stderr)
	}

	stdout, stderr, err := runKamun(t, binaryPath, home, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "kamun: General Assembly")
	assert.Contains(t, stdout, "Ocean plastics")
	assert.Contains(t, stdout, "A/1")

	stdout, stderr, err = runKamun(t, binaryPath, home, "resolution", "list", "--status", "passed")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Clean seas")
}

func TestSmokeUnreachableRemoteFallsBackToCache(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runKamunEnv(t, binaryPath, home, []string{"KAMUN_REMOTE_URL=http://insecure.example", "KAMUN_REMOTE_KEY=short"}, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "local cache only")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "kamun-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/kamun")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build kamun binary: %s", string(output))
	return binaryPath
}

func runKamun(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()
	return runKamunEnv(t, binaryPath, home, nil, args...)
}

func runKamunEnv(t *testing.T, binaryPath, home string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = home
	cmd.Env = append(cleanEnv(), "HOME="+home)
	cmd.Env = append(cmd.Env, env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// cleanEnv drops KAMUN_* settings of the machine running the tests.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "KAMUN_") {
			env = append(env, kv)
		}
	}
	return env
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
