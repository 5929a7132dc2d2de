package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_AddAndLogin(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "user", "add", "bob", "--name", "Bob", "--password", "hunter2")

	out, err := p.run(t, "user", "login", "bob", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, out, "invalid username or password")

	p.mustRun(t, "user", "login", "bob", "--password", "hunter2")
	data, err := os.ReadFile(p.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user: bob")

	// Each user has a separate ledger.
	out = p.mustRun(t, "account", "list")
	assert.Contains(t, out, "(none)")
}

func TestUser_RoleRequiresAdmin(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "user", "add", "bob", "--password", "pw")

	out, err := p.run(t, "--user", "bob", "user", "add", "eve", "--password", "pw", "--role", "admin")
	require.Error(t, err)
	assert.Contains(t, out, "only administrators")

	out, err = p.run(t, "--user", "bob", "user", "delete", "alice")
	require.Error(t, err)
	assert.Contains(t, out, "only administrators")
}

func TestUser_RenameMovesData(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "user", "add", "bob", "--password", "pw")
	p.mustRun(t, "--user", "bob", "account", "add", "--name", "Cartera", "--balance", "12")

	p.mustRun(t, "user", "update", "bob", "--new-username", "carol", "--name", "Carol")

	out := p.mustRun(t, "--user", "carol", "account", "list")
	assert.Contains(t, out, "Cartera")

	out, err := p.run(t, "--user", "bob", "account", "list")
	require.Error(t, err)
	assert.Contains(t, out, "not registered")

	out = p.mustRun(t, "user", "list")
	assert.Contains(t, out, "Carol")
	assert.NotContains(t, out, "bob")
}

func TestUser_RenameSelfUpdatesSession(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "user", "update", "alice", "--new-username", "alicia")

	data, err := os.ReadFile(p.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user: alicia")
	p.mustRun(t, "account", "list")
}

func TestUser_Delete(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "user", "add", "bob", "--password", "pw")
	p.mustRun(t, "--user", "bob", "account", "add", "--name", "Cartera")

	out, err := p.run(t, "user", "delete", "alice")
	require.Error(t, err)
	assert.Contains(t, out, "cannot delete your own user")

	p.mustRun(t, "user", "delete", "bob")
	out = p.mustRun(t, "user", "list")
	assert.NotContains(t, out, "bob")

	data, err := os.ReadFile(filepath.Join(p.dir, ".tally", "store.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "financeData_bob")
}

func TestUser_Logout(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "user", "logout")

	out, err := p.run(t, "account", "list")
	require.Error(t, err)
	assert.Contains(t, out, "no active user")
}

func TestTheme(t *testing.T) {
	p := initProject(t)

	assert.Contains(t, p.mustRun(t, "theme"), "light")
	assert.Contains(t, p.mustRun(t, "theme", "toggle"), "dark")
	assert.Contains(t, p.mustRun(t, "theme", "get"), "dark")
	p.mustRun(t, "theme", "set", "light")
	assert.Contains(t, p.mustRun(t, "theme"), "light")

	_, err := p.run(t, "theme", "set", "purple")
	require.Error(t, err)
}

func TestLog_RecordsMutations(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "5")
	p.mustRun(t, "tx", "add", "--category", "Comida", "--amount", "1", "--account", "1")

	out := p.mustRun(t, "log")
	assert.Contains(t, out, "account_add")
	assert.Contains(t, out, "tx_add")
	assert.Contains(t, out, "acct:1")
}
