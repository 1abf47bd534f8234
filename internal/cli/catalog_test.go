package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/camlkit/internal/store"
)

func TestSaveAndShow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.yaml", ordersYAML)
	db := filepath.Join(dir, "catalog.db")

	out, err := execute(NewSaveCommand(&RootOptions{Format: "text"}), path, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ active_orders: saved revision 1")
	assert.Contains(t, out, "✓ open_statuses: saved revision 1")
	assert.Contains(t, out, "2 saved, 0 unchanged")

	out, err = execute(NewShowCommand(&RootOptions{Format: "text"}), "active_orders", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, activeOrdersCAML+"\n", out)
}

func TestSaveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.yaml", ordersYAML)
	db := filepath.Join(dir, "catalog.db")

	_, err := execute(NewSaveCommand(&RootOptions{Format: "text"}), path, "--db", db)
	require.NoError(t, err)

	out, err := execute(NewSaveCommand(&RootOptions{Format: "json"}), path, "--db", db)
	require.NoError(t, err)

	var result SaveResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.Unchanged)
	for _, q := range result.Queries {
		assert.False(t, q.Inserted)
		assert.Equal(t, int64(1), q.Seq)
	}
}

func TestSaveNewRevisionAndHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")

	path := writeFile(t, dir, "orders.yaml", ordersYAML)
	_, err := execute(NewSaveCommand(&RootOptions{Format: "text"}), path, "--db", db, "--name", "active_orders")
	require.NoError(t, err)

	writeFile(t, dir, "orders.yaml", strings.Replace(ordersYAML, "value: Active", "value: Closed", 1))
	out, err := execute(NewSaveCommand(&RootOptions{Format: "text"}), path, "--db", db, "--name", "active_orders")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ active_orders: saved revision 2")

	out, err = execute(NewShowCommand(&RootOptions{Format: "text"}), "active_orders", "--db", db, "--history")
	require.NoError(t, err)
	first := strings.Index(out, "revision 1")
	second := strings.Index(out, "revision 2")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.Contains(t, out, ">Active<")
	assert.Contains(t, out, ">Closed<")

	out, err = execute(NewShowCommand(&RootOptions{Format: "json"}), "active_orders", "--db", db)
	require.NoError(t, err)
	var rev store.Revision
	decodeResponse(t, out, &rev)
	assert.Equal(t, int64(2), rev.Seq)
	assert.Contains(t, rev.CAML, ">Closed<")
	assert.Contains(t, rev.Definition, `"name":"active_orders"`)
}

func TestSaveBuildErrorLeavesCatalogUntouched(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs/orders.yaml", ordersYAML)
	writeFile(t, dir, "defs/bad.yaml", badMembershipYAML)
	db := filepath.Join(dir, "catalog.db")

	_, err := execute(NewSaveCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "defs"), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(NewListCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No queries cataloged.\n", out)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.yaml", ordersYAML)
	db := filepath.Join(dir, "catalog.db")

	_, err := execute(NewSaveCommand(&RootOptions{Format: "text"}), path, "--db", db)
	require.NoError(t, err)

	out, err := execute(NewListCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "active_orders\trevision 1\t"))
	assert.True(t, strings.HasPrefix(lines[1], "open_statuses\trevision 1\t"))

	out, err = execute(NewListCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)
	var revs []store.Revision
	decodeResponse(t, out, &revs)
	require.Len(t, revs, 2)
	assert.Equal(t, "open_statuses", revs[1].Name)
}

func TestShowUnknownQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	for _, args := range [][]string{
		{"missing", "--db", db},
		{"missing", "--db", db, "--history"},
	} {
		out, err := execute(NewShowCommand(&RootOptions{Format: "text"}), args...)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error [E140]")
	}
}

func TestCatalogRequiresDB(t *testing.T) {
	out, err := execute(NewListCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no catalog database")
}

func TestCatalogDBFromRootOptions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, err := execute(NewListCommand(&RootOptions{Format: "text", DB: db}))
	require.NoError(t, err)
	assert.Equal(t, "No queries cataloged.\n", out)
}
