package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "migrate", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	migrate, _, err := root.Find([]string{"migrate", "version"})
	require.NoError(t, err)
	assert.Equal(t, "version", migrate.Name())
}

func TestSeedAgainstMemoryStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE", "memory")
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
books:
  - name: Dune
    category_id: "3"
    collection_id: "1"
    launch_date: "1965-08-01"
    publisher: Chilton
`), 0o600))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"seed", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "created 1 books and 0 members")
}

func TestSeedRequiresFile(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"seed"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	require.Error(t, root.Execute())
}
