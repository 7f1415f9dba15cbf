package lawyers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Jon Jonsson": "Jón Jónsson"}`), 0o644))

	a, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "Jón Jónsson", a.Resolve("Jon Jonsson"))
	assert.Equal(t, "Anna Jónsdóttir", a.Resolve("Anna Jónsdóttir"))
}

func TestLoadAliasesMissingFile(t *testing.T) {
	a, err := LoadAliases(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, a)

	a, err = LoadAliases("")
	require.NoError(t, err)
	assert.Empty(t, a)
}

func TestLoadAliasesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2]`), 0o644))

	_, err := LoadAliases(path)
	assert.Error(t, err)
}

func TestResolveNilAliases(t *testing.T) {
	var a Aliases
	assert.Equal(t, "Jón", a.Resolve("Jón"))
}

func TestCanonicalName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Jon Jonsson": "Jón Jónsson"}`), 0o644))

	name, err := CanonicalName(path, "  Jon   Jonsson ")
	require.NoError(t, err)
	assert.Equal(t, "Jón Jónsson", name)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
	_, err = CanonicalName(path, "Jon Jonsson")
	assert.Error(t, err)
}
