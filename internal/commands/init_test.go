package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "tally-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "tally")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/tally")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// project is a config file in its own temp dir.
type project struct {
	dir    string
	config string
}

func newProject(t *testing.T) *project {
	t.Helper()
	dir := t.TempDir()
	return &project{dir: dir, config: filepath.Join(dir, "tally.yaml")}
}

func (p *project) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, append([]string{"--config", p.config}, args...)...)
	cmd.Dir = p.dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (p *project) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := p.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// initProject registers alice as the admin and session user.
func initProject(t *testing.T) *project {
	t.Helper()
	p := newProject(t)
	p.mustRun(t, "init", "--user", "alice", "--name", "Alice", "--password", "secret")
	return p
}

func TestInit_CreatesStructure(t *testing.T) {
	p := initProject(t)

	for _, d := range []string{
		".tally",
		filepath.Join(".tally", "import", "processed"),
		filepath.Join(".tally", "logs"),
	} {
		info, err := os.Stat(filepath.Join(p.dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	data, err := os.ReadFile(filepath.Join(p.dir, ".tally", "store.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"users"`)
	assert.Contains(t, string(data), `"userRegDate_alice"`)
}

func TestInit_Config(t *testing.T) {
	p := initProject(t)

	data, err := os.ReadFile(p.config)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "backend: file")
	assert.Contains(t, contents, "data_dir: .tally")
	assert.Contains(t, contents, "user: alice")
}

func TestInit_FirstUserIsAdmin(t *testing.T) {
	p := initProject(t)

	out := p.mustRun(t, "user", "list")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Administrador")
}

func TestInit_RequiresUser(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "init", "--password", "secret")
	require.Error(t, err)
	assert.Contains(t, out, "--user")
}

func TestInit_ExistingConfigAddsUser(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "init", "--user", "bob", "--password", "pw")

	data, err := os.ReadFile(p.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user: bob")

	out := p.mustRun(t, "user", "list")
	assert.Contains(t, out, "Usuario Normal")
}

func TestInit_DuplicateUser(t *testing.T) {
	p := initProject(t)
	out, err := p.run(t, "init", "--user", "alice", "--password", "secret")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestCommands_RequireInit(t *testing.T) {
	p := newProject(t)
	out, err := p.run(t, "account", "list")
	require.Error(t, err)
	assert.Contains(t, out, "tally init")
}
