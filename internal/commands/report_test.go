package commands_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMarch records an income, an expense and a transfer in March 2024.
func seedMarch(t *testing.T, p *project) {
	t.Helper()
	p.mustRun(t, "account", "add", "--name", "Corriente", "--balance", "100")
	p.mustRun(t, "account", "add", "--name", "Ahorro", "--type", "savings")
	p.mustRun(t, "tx", "add", "--date", "2024-03-02", "--desc", "Nómina", "--category", "Salario",
		"--type", "income", "--amount", "500", "--account", "1")
	p.mustRun(t, "tx", "add", "--date", "2024-03-04", "--desc", "Super", "--category", "Comida",
		"--amount", "75.5", "--account", "1")
	p.mustRun(t, "transfer", "add", "--from", "1", "--to", "2", "--amount", "200", "--date", "2024-03-05")
}

func TestReport_Dashboard(t *testing.T) {
	p := initProject(t)
	seedMarch(t, p)

	out := p.mustRun(t, "report", "dashboard", "--month", "2024-03")
	assert.Contains(t, out, "marzo 2024")
	assert.Contains(t, out, "$500.00")
	assert.Contains(t, out, "$75.50")
	assert.Contains(t, out, "+$424.50")
	assert.Contains(t, out, "$524.50")
	assert.Contains(t, out, "Super")
}

func TestReport_MonthExcludesOtherMonths(t *testing.T) {
	p := initProject(t)
	seedMarch(t, p)

	out := p.mustRun(t, "report", "month", "--month", "2024-02")
	assert.Contains(t, out, "(none)")

	out = p.mustRun(t, "report", "month", "--month", "2024-03")
	assert.Contains(t, out, "Nómina")
	assert.Contains(t, out, "Transferencia")
}

func TestReport_CategoriesSkipTransfers(t *testing.T) {
	p := initProject(t)
	seedMarch(t, p)

	out := p.mustRun(t, "report", "categories", "--month", "2024-03")
	assert.Contains(t, out, "Comida")
	assert.NotContains(t, out, "$200.00")
}

func TestReport_Series(t *testing.T) {
	p := initProject(t)
	seedMarch(t, p)

	out := p.mustRun(t, "report", "series", "--month", "2024-03", "--count", "3")
	assert.Contains(t, out, "enero 2024")
	assert.Contains(t, out, "febrero 2024")
	assert.Contains(t, out, "marzo 2024")
}

func TestReport_BadMonth(t *testing.T) {
	p := initProject(t)
	_, err := p.run(t, "report", "month", "--month", "2024-13")
	require.Error(t, err)
}

func TestExport_Stdout(t *testing.T) {
	p := initProject(t)
	seedMarch(t, p)

	out := p.mustRun(t, "export", "--out", "-")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Fecha,Descripción,Categoría,Tipo,Monto,Cuenta", lines[0])
	assert.Contains(t, out, "Corriente")
}
