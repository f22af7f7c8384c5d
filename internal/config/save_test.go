package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func loadQueries(t *testing.T, path string) []QueryConfig {
	t.Helper()
	cfg, _, err := Load(viper.New(), path)
	require.NoError(t, err)
	return cfg.Queries
}

func TestSaveQueries_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveQueries(configPath, []QueryConfig{{Name: "gears", Operation: "name ~ gear"}})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "name: gears")
	require.Contains(t, string(data), "operation: name ~ gear")
	require.NotContains(t, string(data), "order_by")
}

func TestSaveQueries_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my settings
db: /srv/children.db # production copy
cache:
  ttl: 5m
queries:
  - name: old
    operation: all
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	err := SaveQueries(configPath, []QueryConfig{{Name: "new", Operation: "status = active", OrderBy: "name"}})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# my settings")
	require.Contains(t, content, "# production copy")
	require.Contains(t, content, "ttl: 5m")
	require.NotContains(t, content, "name: old")

	require.Equal(t, []QueryConfig{{Name: "new", Operation: "status = active", OrderBy: "name"}}, loadQueries(t, configPath))
}

func TestSaveQueries_AppendsSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("db: a.db\n"), 0o600))

	require.NoError(t, SaveQueries(configPath, []QueryConfig{{Name: "q", Operation: "id > 3"}}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "db: a.db")
	require.Equal(t, []QueryConfig{{Name: "q", Operation: "id > 3"}}, loadQueries(t, configPath))
}

func TestSaveQueries_QuotesSpecialValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	queries := []QueryConfig{{Name: "quoted", Operation: `name = "a: b" or name ~ '#x'`}}

	require.NoError(t, SaveQueries(configPath, queries))
	require.Equal(t, queries, loadQueries(t, configPath))
}

func TestSaveQueries_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	require.NoError(t, SaveQueries(configPath, DefaultQueries()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.yaml", entries[0].Name())
}

func TestSaveQueries_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "a", "b", "config.yaml")
	require.NoError(t, SaveQueries(configPath, nil))

	_, err := os.Stat(configPath)
	require.NoError(t, err)
}

func TestSaveQueries_RejectsNonMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- just\n- a list\n"), 0o600))

	require.Error(t, SaveQueries(configPath, DefaultQueries()))
}

func TestPutQuery(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	existing := []QueryConfig{
		{Name: "a", Operation: "all"},
		{Name: "b", Operation: "id = 1"},
	}

	require.NoError(t, PutQuery(configPath, QueryConfig{Name: "b", Operation: "id = 2"}, existing))
	require.Equal(t, []QueryConfig{
		{Name: "a", Operation: "all"},
		{Name: "b", Operation: "id = 2"},
	}, loadQueries(t, configPath))

	require.NoError(t, PutQuery(configPath, QueryConfig{Name: "c", Operation: "id = 3"}, existing))
	require.Len(t, loadQueries(t, configPath), 3)

	require.Error(t, PutQuery(configPath, QueryConfig{Name: "d", Operation: "colour = red"}, existing))
}

func TestDeleteQuery(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	existing := DefaultQueries()

	require.NoError(t, DeleteQuery(configPath, "recent", existing))
	got := loadQueries(t, configPath)
	require.Len(t, got, 2)
	require.Equal(t, "active", got[0].Name)
	require.Equal(t, "archived", got[1].Name)

	require.ErrorContains(t, DeleteQuery(configPath, "missing", existing), `query "missing" not found`)
}
