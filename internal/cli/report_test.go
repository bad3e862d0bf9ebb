package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/till/pkg/types"
)

func TestReportTotals(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "sale", "record", "1", "--quantity", "50", "--total", "5.00", "--method", "debito")
	e.mustRun(t, "sale", "record", "2", "--quantity", "1", "--total", "0.10")
	e.mustRun(t, "sale", "record", "2", "--quantity", "2", "--total", "0.20")

	totals := decode[map[string]float64](t, e.mustRun(t, "--json", "report", "totals"))
	assert.Equal(t, map[string]float64{types.PaymentDebit: 5.0, types.PaymentCash: 0.3}, totals)

	out := e.mustRun(t, "report", "totals")
	assert.Contains(t, out, "Sales by payment method")
	assert.Contains(t, out, "debito    5.00")
	assert.Contains(t, out, "efectivo  0.30")
	assert.Contains(t, out, "Total: 5.30")
}

func TestReportDaily(t *testing.T) {
	e := newEnv(t)

	cut := decode[types.CashCut](t, e.mustRun(t, "--json", "report", "daily"))
	assert.Equal(t, 0.0, cut.Total)
	assert.Equal(t, 0, cut.SaleCount)

	e.mustRun(t, "product", "add", "--name", "Widget", "--price", "2.5", "--quantity", "4")
	e.mustRun(t, "sale", "sell", "1", "--quantity", "2", "--method", "debito")
	e.mustRun(t, "sale", "sell", "1", "--quantity", "1")

	cut = decode[types.CashCut](t, e.mustRun(t, "--json", "report", "daily"))
	assert.Equal(t, 7.5, cut.Total)
	assert.Equal(t, 2, cut.SaleCount)
	assert.Equal(t, map[string]float64{types.PaymentDebit: 5.0, types.PaymentCash: 2.5}, cut.ByMethod)

	out := e.mustRun(t, "report", "daily")
	assert.Contains(t, out, "(2 sale(s))")
	assert.Contains(t, out, "Total: 7.50")
}

func TestReportInventory(t *testing.T) {
	e := newEnv(t)

	assert.Contains(t, e.mustRun(t, "report", "inventory"), "Inventory value: 0.00")

	e.mustRun(t, "product", "add", "--name", "Widget", "--price", "2.50", "--quantity", "4")
	e.mustRun(t, "product", "add", "--name", "Gadget", "--price", "10.00", "--quantity", "1")

	got := decode[map[string]float64](t, e.mustRun(t, "--json", "report", "inventory"))
	assert.Equal(t, map[string]float64{"inventory_value": 20.0}, got)
	assert.Contains(t, e.mustRun(t, "report", "inventory"), "Inventory value: 20.00")
}

func TestReportExport(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "product", "add", "--name", "Widget", "--price", "2.50", "--quantity", "4")
	e.mustRun(t, "product", "add", "--name", "Gadget", "--price", "10.00", "--quantity", "1")

	path := filepath.Join(t.TempDir(), "reporte.csv")
	out := e.mustRun(t, "report", "export", "--output", path)
	assert.Contains(t, out, "Inventory report written to "+path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"ID,Nombre,Precio,Cantidad,Valor Total\n1,Widget,2.5,4,10.0\n2,Gadget,10.0,1,10.0\n",
		string(content))
}

func TestReportExport_PathFromConfig(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(t.TempDir(), "from-config.csv")
	e.writeConfig(t, "export_path: "+path+"\n")

	e.mustRun(t, "report", "export")
	assert.FileExists(t, path)
}

func TestReportExport_Unwritable(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "report", "export", "--output", filepath.Join(t.TempDir(), "missing", "r.csv"))
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestReportJournal(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "sale", "record", "1", "--quantity", "2", "--total", "3")

	path := filepath.Join(t.TempDir(), "ventas.jsonl")
	e.mustRun(t, "report", "journal", "--output", path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(content, &line))
	assert.Equal(t, 3.0, line["total"])
	assert.Equal(t, types.PaymentCash, line["payment_method"])

	_, _, err = e.run(t, "report", "journal")
	assert.Error(t, err, "--output is required")
}
