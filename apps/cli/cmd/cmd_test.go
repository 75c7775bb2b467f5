package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/errmap"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopYAML = `
locations:
  - name: Corner Shop
    filter: needed
    aisles:
      - name: Produce
        products:
          - {name: Apple, qty: 3}
          - {name: Milk, in_stock: true}
      - name: Bakery
        products:
          - {name: Bread}
      - name: Dairy
        products:
          - {name: Butter}
`

type cliEnv struct {
	t    *testing.T
	dir  string
	db   string
	seed string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		t:    t,
		dir:  dir,
		db:   filepath.Join(dir, "list.db"),
		seed: filepath.Join(dir, "seed.yaml"),
	}
	require.NoError(t, os.WriteFile(env.seed, []byte(shopYAML), 0o600))
	return env
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	base := []string{
		"--config", filepath.Join(e.dir, "missing.yaml"),
		"--db", e.db,
		"--debounce", "0s",
	}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err)
	return out
}

type jsonRow struct {
	Kind      string `json:"kind"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AisleID   int64  `json:"aisle_id"`
	QtyNeeded int    `json:"qty_needed"`
}

func (e *cliEnv) rows(args ...string) []jsonRow {
	e.t.Helper()
	out := e.mustRun(append([]string{"show", "--json"}, args...)...)
	var rows []jsonRow
	require.NoError(e.t, json.Unmarshal([]byte(out), &rows))
	return rows
}

func rowNames(rows []jsonRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func TestSeedAndShow(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("seed", env.seed)
	assert.Contains(t, out, "Corner Shop")

	out = env.mustRun("show", "Corner Shop")
	assert.Contains(t, out, "Produce (1)")
	assert.Contains(t, out, "[ ] Apple x3")
	assert.NotContains(t, out, "Milk", "needed filter hides stocked products")

	rows := env.rows("1", "--filter", "all")
	assert.Equal(t, []string{"Produce", "Apple", "Milk", "Bakery", "Bread", "Dairy", "Butter"}, rowNames(rows))
	assert.Equal(t, "aisle", rows[0].Kind)
	assert.Equal(t, 3, rows[1].QtyNeeded)
}

func TestShowSearch(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	rows := env.rows("Corner Shop", "--search", "mil")
	var products []string
	for _, r := range rows {
		if r.Kind == "product" {
			products = append(products, r.Name)
		}
	}
	assert.Equal(t, []string{"Milk"}, products, "search ignores the stock filter")
}

func TestShowUnknownLocation(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	_, err := env.run("show", "Nowhere")
	require.Error(t, err)
	assert.Equal(t, errmap.CodeInvalidLocation, errmap.CodeOf(err))

	_, err = env.run("show", "42")
	require.Error(t, err)
	assert.Equal(t, errmap.CodeInvalidLocation, errmap.CodeOf(err))
}

func TestMoveAisle(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	out := env.mustRun("move", "Corner Shop", "aisle:1", "aisle:3")
	assert.Contains(t, out, `moved aisle "Produce" after aisle "Dairy"`)

	var aisles []string
	for _, r := range env.rows("Corner Shop", "--filter", "all") {
		if r.Kind == "aisle" {
			aisles = append(aisles, r.Name)
		}
	}
	assert.Equal(t, []string{"Bakery", "Dairy", "Produce"}, aisles)
}

func TestMoveProductIntoOtherAisle(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	env.mustRun("move", "Corner Shop", "product:1", "aisle:2")

	rows := env.rows("Corner Shop", "--filter", "all")
	for _, r := range rows {
		if r.Name == "Apple" {
			assert.Equal(t, int64(2), r.AisleID)
		}
	}
	assert.Equal(t, []string{"Produce", "Milk", "Bakery", "Apple", "Bread", "Dairy", "Butter"}, rowNames(rows))
}

func TestMoveProductOutOfCollapsedAisle(t *testing.T) {
	env := newCLIEnv(t)
	collapsed := strings.Replace(shopYAML, "      - name: Bakery\n", "      - name: Bakery\n        collapsed: true\n", 1)
	require.NoError(t, os.WriteFile(env.seed, []byte(collapsed), 0o600))
	env.mustRun("seed", env.seed)
	require.NotContains(t, rowNames(env.rows("Corner Shop", "--filter", "all")), "Bread")

	out := env.mustRun("move", "Corner Shop", "product:3", "product:1")
	assert.Contains(t, out, `moved product "Bread" after product "Apple"`)

	var bread *jsonRow
	rows := env.rows("Corner Shop", "--filter", "all")
	for i := range rows {
		if rows[i].Name == "Bread" {
			bread = &rows[i]
		}
	}
	require.NotNil(t, bread, "Bread now sits in the expanded Produce aisle")
	assert.Equal(t, int64(1), bread.AisleID)
}

func TestMoveRejectsUnknownItem(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	_, err := env.run("move", "Corner Shop", "aisle:99")
	assert.ErrorContains(t, err, "aisle 99 is not on the list")

	_, err = env.run("move", "Corner Shop", "shelf:1")
	assert.ErrorContains(t, err, "unknown kind")
}

func TestSort(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	out := env.mustRun("sort", "Corner Shop")
	assert.Contains(t, out, "sorted Corner Shop")

	assert.Equal(t,
		[]string{"Bakery", "Bread", "Dairy", "Butter", "Produce", "Apple", "Milk"},
		rowNames(env.rows("Corner Shop", "--filter", "all")))
}

func TestQtyAndStock(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	out := env.mustRun("qty", "1", "5")
	assert.Contains(t, out, "product 1 needs 5")

	out = env.mustRun("stock", "2", "false")
	assert.Contains(t, out, "product 2 needed")

	rows := env.rows("Corner Shop")
	assert.Equal(t, []string{"Produce", "Apple", "Milk", "Bakery", "Bread", "Dairy", "Butter"}, rowNames(rows))
	assert.Equal(t, 5, rows[1].QtyNeeded)
}

func TestQtyNegative(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	_, err := env.run("qty", "--", "1", "-1")
	require.Error(t, err)
	assert.Equal(t, errmap.CodeValidation, errmap.CodeOf(err))

	_, err = env.run("qty", "99", "1")
	assert.ErrorContains(t, err, "product 99 does not exist")

	_, err = env.run("stock", "1", "maybe")
	require.Error(t, err)
	assert.Equal(t, errmap.CodeValidation, errmap.CodeOf(err))
}

func TestSearch(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	out := env.mustRun("search", "Corner Shop", "btr")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "product:4\t"))
	assert.True(t, strings.HasSuffix(lines[0], "\tButter"))
}

func TestConfigFile(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("seed", env.seed)

	cfg := filepath.Join(env.dir, "aislelist.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("db: "+env.db+"\nlog-level: DEBUG\n"), 0o600))

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"--config", cfg, "show", "--json", "Corner Shop"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), `"name": "Apple"`)
	assert.Contains(t, errOut.String(), "opening store")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("version")
	assert.Equal(t, "aislelist "+version+"\n", out)
}

func TestParseItemRef(t *testing.T) {
	tests := []struct {
		in      string
		want    itemRef
		wantErr bool
	}{
		{in: "aisle:3", want: itemRef{kind: displayitem.KindAisle, id: 3}},
		{in: "Product:12", want: itemRef{kind: displayitem.KindProduct, id: 12}},
		{in: "aisle", wantErr: true},
		{in: "aisle:x", wantErr: true},
		{in: "aisle:0", wantErr: true},
		{in: "empty:1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseItemRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	items := []displayitem.Item{
		displayitem.Aisle{ID: 1, Name: "Produce", Expanded: false, ChildCount: 2},
		displayitem.Product{ID: 7, Name: "Pear", InStock: true},
	}
	require.NoError(t, writeText(&buf, items))
	assert.Equal(t,
		"> aisle:1      Produce (2)\n"+
			"    product:7    [x] Pear\n",
		buf.String())

	buf.Reset()
	require.NoError(t, writeText(&buf, []displayitem.Item{displayitem.EmptyList{}}))
	assert.Equal(t, "(nothing to show)\n", buf.String())
}
