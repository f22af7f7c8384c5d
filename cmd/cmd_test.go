package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/finder/internal/presentation"
)

// setupWorkspace runs the test in an empty directory with its own HOME so
// config lookup and the default database stay inside it.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
	return dir
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, env := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	require.NoError(t, env.Close())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	return out
}

func queryJSON(t *testing.T, args ...string) []presentation.ChildDTO {
	t.Helper()
	out := mustRun(t, append([]string{"query", "--json"}, args...)...)
	var dtos []presentation.ChildDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dtos))
	return dtos
}

func names(dtos []presentation.ChildDTO) []string {
	out := make([]string, len(dtos))
	for i, d := range dtos {
		out[i] = d.Name
	}
	return out
}

func seed(t *testing.T) {
	t.Helper()
	mustRun(t, "add", "--parent", "1", "--name", "gear")
	mustRun(t, "add", "--parent", "1", "--name", "cog", "--status", "inactive")
	mustRun(t, "add", "--parent", "2", "--name", "bolt", "--status", "archived")
}

func TestRoot_WritesDefaultConfig(t *testing.T) {
	dir := setupWorkspace(t)

	mustRun(t, "explain", "all")

	_, err := os.Stat(filepath.Join(dir, ".finder", "config.yaml"))
	require.NoError(t, err)
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := setupWorkspace(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: -1m\n"), 0o600))

	_, err := run(t, "--config", path, "query")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestAdd_CreatesDatabaseAndPrintsChild(t *testing.T) {
	dir := setupWorkspace(t)

	out := mustRun(t, "add", "--parent", "3", "--name", "gear", "--json")

	var dtos []presentation.ChildDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dtos))
	require.Len(t, dtos, 1)
	require.NotZero(t, dtos[0].ID)
	require.NotEmpty(t, dtos[0].GUID)
	require.Equal(t, int64(3), dtos[0].ParentID)
	require.Equal(t, "active", dtos[0].Status)

	_, err := os.Stat(filepath.Join(dir, ".finder", "finder.db"))
	require.NoError(t, err)
}

func TestAdd_RejectsBadInput(t *testing.T) {
	setupWorkspace(t)

	_, err := run(t, "add", "--parent", "3", "--name", "gear", "--status", "lost")
	require.ErrorContains(t, err, "unknown status")

	_, err = run(t, "add", "--parent", "3", "--name", "  ")
	require.ErrorContains(t, err, "name is required")

	_, err = run(t, "add", "--name", "gear")
	require.ErrorContains(t, err, "parent")
}

func TestQuery_Operation(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	require.Equal(t, []string{"cog", "gear"}, names(queryJSON(t, "parent_id = 1", "--order", "name")))
	require.Equal(t, []string{"gear", "cog", "bolt"}, names(queryJSON(t)))
	require.Equal(t, []string{"bolt"}, names(queryJSON(t, "status = archived")))
	require.Equal(t, []string{"bolt", "cog"}, names(queryJSON(t, "not status = active order by name")))
}

func TestQuery_PlainTextSearchesNames(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	require.Equal(t, []string{"gear"}, names(queryJSON(t, "GEA")))
	require.Empty(t, queryJSON(t, "spring"))
}

func TestQuery_Table(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	out := mustRun(t, "query", "parent_id = 2")
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "bolt")
	require.NotContains(t, out, "gear")
	require.Contains(t, out, "1 child\n")
}

func TestQuery_Count(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	require.Equal(t, "2\n", mustRun(t, "query", "parent_id = 1", "--count"))
	require.Equal(t, "3\n", mustRun(t, "query", "--count"))
}

func TestQuery_InvalidOperation(t *testing.T) {
	setupWorkspace(t)

	_, err := run(t, "query", "colour = red and name = x")
	require.ErrorContains(t, err, "colour")

	_, err = run(t, "query", "status = lost or name = x")
	require.Error(t, err)

	_, err = run(t, "query", "all", "--order", "colour")
	require.Error(t, err)
}

func TestQuery_NamedAndSave(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	require.Equal(t, []string{"gear"}, names(queryJSON(t, "--named", "active")))

	mustRun(t, "query", "parent_id = 1 and status = inactive", "--save", "idle", "--count")
	require.Equal(t, []string{"cog"}, names(queryJSON(t, "--named", "idle")))

	_, err := run(t, "query", "--named", "missing")
	require.ErrorContains(t, err, `no saved query named "missing"`)

	_, err = run(t, "query", "all", "--named", "idle")
	require.ErrorContains(t, err, "--named cannot be combined")
}

func TestQuery_Forget(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	mustRun(t, "query", "status = inactive", "--save", "idle")
	out := mustRun(t, "query", "--forget", "idle")
	require.Contains(t, out, `Removed query "idle"`)

	_, err := run(t, "query", "--named", "idle")
	require.ErrorContains(t, err, `no saved query named "idle"`)
	require.Equal(t, []string{"gear"}, names(queryJSON(t, "--named", "active")))

	_, err = run(t, "query", "--forget", "idle")
	require.ErrorContains(t, err, `query "idle" not found`)

	_, err = run(t, "query", "all", "--forget", "active")
	require.ErrorContains(t, err, "--forget takes no operation")
}

func TestQuery_WatchNeedsFile(t *testing.T) {
	setupWorkspace(t)

	_, err := run(t, "--memory", "query", "--watch")
	require.ErrorContains(t, err, "--memory")
}

func TestQuery_MemoryDatabaseIsEmpty(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	require.Equal(t, "0\n", mustRun(t, "--memory", "query", "--count"))
}

func TestQuery_DBFlag(t *testing.T) {
	dir := setupWorkspace(t)
	other := filepath.Join(dir, "other", "children.db")

	mustRun(t, "--db", other, "add", "--parent", "9", "--name", "elsewhere")

	require.Equal(t, "1\n", mustRun(t, "--db", other, "query", "--count"))
	require.Equal(t, "0\n", mustRun(t, "query", "--count"))
}

func TestExplain(t *testing.T) {
	setupWorkspace(t)

	out := mustRun(t, "explain", "parent_id = 3", "--order", "name", "--json")

	var e presentation.ExplainDTO
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	require.Equal(t, "parent_id = 3", e.Operation)
	require.Equal(t, "name", e.OrderBy)
	require.Contains(t, e.SQL, "WHERE c.parent_id = ? ORDER BY c.name ASC, c.id ASC")
	require.Equal(t, []any{float64(3)}, e.Params)
}

func TestExplain_Text(t *testing.T) {
	setupWorkspace(t)

	out := mustRun(t, "explain", "bolt")
	require.Contains(t, out, `name ~ "bolt"`)
	require.Contains(t, out, "LIKE")
}

func TestDelete(t *testing.T) {
	setupWorkspace(t)
	seed(t)

	_, err := run(t, "delete", "parent_id = 1")
	require.ErrorContains(t, err, "refusing to delete 2")
	require.Equal(t, "3\n", mustRun(t, "query", "--count"))

	require.Equal(t, "deleted 2 children\n", mustRun(t, "delete", "parent_id = 1", "--yes"))
	require.Equal(t, []string{"bolt"}, names(queryJSON(t)))

	require.Equal(t, "deleted 0 children\n", mustRun(t, "delete", "parent_id = 1", "--yes"))
}

func TestDelete_NeedsOperation(t *testing.T) {
	setupWorkspace(t)

	_, err := run(t, "delete", "--yes")
	require.ErrorContains(t, err, `use "all"`)
}
