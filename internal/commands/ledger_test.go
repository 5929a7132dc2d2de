package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_AddListDelete(t *testing.T) {
	p := initProject(t)

	out := p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "100")
	assert.Contains(t, out, "Account 1 created")
	p.mustRun(t, "account", "add", "--name", "Ahorro", "--type", "savings")

	out = p.mustRun(t, "account", "list")
	assert.Contains(t, out, "Corriente")
	assert.Contains(t, out, "Ahorro")
	assert.Contains(t, out, "$100.00")

	p.mustRun(t, "account", "delete", "2")
	out = p.mustRun(t, "account", "list")
	assert.NotContains(t, out, "Ahorro")
}

func TestAccount_InvalidType(t *testing.T) {
	p := initProject(t)
	out, err := p.run(t, "account", "add", "--name", "X", "--type", "piggybank")
	require.Error(t, err)
	assert.Contains(t, out, "unknown account type")
}

func TestAccount_DeleteInUse(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "100")
	p.mustRun(t, "tx", "add", "--date", "2024-03-05", "--desc", "Pan", "--category", "Comida", "--amount", "2", "--account", "1")

	out, err := p.run(t, "account", "delete", "1")
	require.Error(t, err)
	assert.Contains(t, out, "account has transactions")
}

func TestTx_AddAdjustsBalance(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "100")

	p.mustRun(t, "tx", "add", "--date", "2024-03-05", "--desc", "Super", "--category", "Comida",
		"--type", "expense", "--amount", "30", "--account", "1")
	p.mustRun(t, "tx", "add", "--date", "2024-03-10", "--desc", "Nómina", "--category", "Salario",
		"--type", "income", "--amount", "1000", "--account", "1")

	out := p.mustRun(t, "account", "list")
	assert.Contains(t, out, "$1,070.00")

	out = p.mustRun(t, "tx", "list", "--type", "expense")
	assert.Contains(t, out, "Super")
	assert.NotContains(t, out, "Nómina")
	assert.Contains(t, out, "5/3/2024")
}

func TestTx_DeleteRevertsBalance(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "100")
	p.mustRun(t, "tx", "add", "--date", "2024-03-05", "--desc", "Super", "--category", "Comida", "--amount", "30", "--account", "1")

	p.mustRun(t, "tx", "delete", "1")
	out := p.mustRun(t, "account", "list")
	assert.Contains(t, out, "$100.00")

	out = p.mustRun(t, "tx", "delete", "1")
	assert.Contains(t, out, "No transaction with id 1")
}

func TestTx_ReservedCategory(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "100")
	out, err := p.run(t, "tx", "add", "--category", "Transferencia", "--amount", "5", "--account", "1")
	require.Error(t, err)
	assert.Contains(t, out, "reserved")
}

func TestTx_ImportFile(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Chase")

	src, err := filepath.Abs("../../testdata/chase_checking.csv")
	require.NoError(t, err)
	out := p.mustRun(t, "tx", "import", src, "--account", "1")
	assert.Contains(t, out, "Imported 6 transactions")

	out = p.mustRun(t, "account", "list")
	assert.Contains(t, out, "$2,412.35")

	out = p.mustRun(t, "tx", "list", "--category", "Importado", "--from", "2025-01-15", "--to", "2025-01-15")
	assert.Contains(t, out, "ACME CONSULTING")
	assert.NotContains(t, out, "GITHUB")

	out = p.mustRun(t, "tx", "import", src, "--account", "1")
	assert.Contains(t, out, "Imported 0 transactions")
	assert.Contains(t, out, "Skipped 6 rows already imported")
	assert.Contains(t, p.mustRun(t, "account", "list"), "$2,412.35")
}

func TestTx_ImportDirectory(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "Caja")

	data, err := os.ReadFile("../../testdata/simple.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, ".tally", "import", "enero.csv"), data, 0o644))

	out := p.mustRun(t, "tx", "import", "--format", "simple", "--account", "1")
	assert.Contains(t, out, "Imported 2 transactions")

	_, err = os.Stat(filepath.Join(p.dir, ".tally", "import", "processed", "enero.csv"))
	require.NoError(t, err)

	out = p.mustRun(t, "tx", "import", "--format", "simple", "--account", "1")
	assert.Contains(t, out, "No CSV files")
}

func TestTransfer_RoundTrip(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "A", "--balance", "100")
	p.mustRun(t, "account", "add", "--name", "B")

	out := p.mustRun(t, "transfer", "add", "--from", "1", "--to", "2", "--amount", "40",
		"--date", "2024-03-01", "--desc", "Ahorro mensual")
	assert.Contains(t, out, "Transferred $40.00 from A to B")

	out = p.mustRun(t, "account", "list")
	assert.Contains(t, out, "$60.00")
	assert.Contains(t, out, "$40.00")

	out = p.mustRun(t, "transfer", "list")
	assert.Contains(t, out, "Ahorro mensual")

	out = p.mustRun(t, "transfer", "delete", "--date", "2024-03-01", "--desc", "Ahorro mensual")
	assert.Contains(t, out, "2 legs")

	out = p.mustRun(t, "account", "list")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$0.00")
}

func TestTransfer_DeleteByShortID(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "A", "--balance", "100")
	p.mustRun(t, "account", "add", "--name", "B")

	out := p.mustRun(t, "transfer", "add", "--from", "1", "--to", "2", "--amount", "10")
	open := strings.LastIndex(out, "(")
	closing := strings.LastIndex(out, ")")
	require.True(t, open >= 0 && closing > open, out)
	short := out[open+1 : closing]

	out = p.mustRun(t, "transfer", "delete", "--id", short)
	assert.Contains(t, out, "Transfer deleted")

	out = p.mustRun(t, "transfer", "list")
	assert.Contains(t, out, "(none)")
}

func TestTransfer_Rejected(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "A", "--balance", "10")
	p.mustRun(t, "account", "add", "--name", "B")

	out, err := p.run(t, "transfer", "add", "--from", "1", "--to", "2", "--amount", "50")
	require.Error(t, err)
	assert.Contains(t, out, "insufficient funds")

	out, err = p.run(t, "transfer", "add", "--from", "1", "--to", "1", "--amount", "5")
	require.Error(t, err)
	assert.Contains(t, out, "same account")
}

func TestTx_DeleteTransferLeg(t *testing.T) {
	p := initProject(t)
	p.mustRun(t, "account", "add", "--name", "A", "--balance", "100")
	p.mustRun(t, "account", "add", "--name", "B")
	p.mustRun(t, "transfer", "add", "--from", "1", "--to", "2", "--amount", "40", "--date", "2024-03-01", "--desc", "Ahorro")

	out := p.mustRun(t, "tx", "delete", "2")
	assert.Contains(t, out, "transfer deleted")

	out = p.mustRun(t, "account", "list")
	assert.Contains(t, out, "$100.00")
	assert.NotContains(t, out, "$40.00")
	assert.Contains(t, p.mustRun(t, "transfer", "list"), "(none)")
	assert.Contains(t, p.mustRun(t, "tx", "list"), "(none)")
}
