package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

func TestRows(t *testing.T) {
	accounts := []model.Account{{ID: 1, Name: "Banco"}}
	txns := []model.Transaction{
		{ID: 2, Date: model.MustParseDate("2024-03-02"), Description: "Sueldo", Category: "Salario",
			Type: model.TypeIncome, Amount: decimal.RequireFromString("1500.50"), AccountID: 1},
		{ID: 1, Date: model.MustParseDate("2024-03-01"), Description: "Café, leche", Category: "Comida",
			Type: model.TypeExpense, Amount: decimal.RequireFromString("3.2"), AccountID: 9},
	}

	rows := Rows(accounts, txns)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"2024-03-02", "Sueldo", "Salario", "Ingreso", "1500.5", "Banco"}, rows[0])
	assert.Equal(t, Row{"2024-03-01", "Café, leche", "Comida", "Gasto", "3.2", "N/A"}, rows[1])
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{"2024-03-01", "Café, leche", "Comida", "Gasto", "3.2", "Banco"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	assert.Equal(t, "Fecha,Descripción,Categoría,Tipo,Monto,Cuenta\n2024-03-01,\"Café, leche\",Comida,Gasto,3.2,Banco\n", buf.String())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Café, leche", records[1][colDesc])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Fecha,Descripción,Categoría,Tipo,Monto,Cuenta\n", buf.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "finanzas-2024-02-29.csv", FileName(model.MustParseDate("2024-02-29")))
}
