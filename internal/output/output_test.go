package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_WriteFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "pet.js")

	require.NoError(t, Disk{}.WriteFile(path, []byte("export {};\n")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export {};\n", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDisk_WriteFile_MissingParent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing", "pet.js")
	err := Disk{}.WriteFile(path, []byte("x"))
	require.Error(t, err)
	var oe *Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, OpWrite, oe.Op)
	assert.Equal(t, path, oe.Path)
}

func TestDisk_RemoveAllAndMkdirAll(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "api")
	nested := filepath.Join(root, "v2", "models")
	require.NoError(t, Disk{}.MkdirAll(nested))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "Stale.js"), []byte("x"), 0o600))

	require.NoError(t, Disk{}.RemoveAll(root))
	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err))

	// removing again is fine
	assert.NoError(t, Disk{}.RemoveAll(root))
}

func TestDisk_MkdirAll_FileInTheWay(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "v2")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	err := Disk{}.MkdirAll(filepath.Join(blocker, "models"))
	var oe *Error
	require.True(t, errors.As(err, &oe), "got %v", err)
	assert.Equal(t, OpMkdir, oe.Op)
}

func TestContains(t *testing.T) {
	t.Parallel()
	base := filepath.Join(t.TempDir(), "a")
	assert.True(t, contains(base, base))
	assert.True(t, contains(base, filepath.Join(base, "b", "c")))
	assert.True(t, contains(base, filepath.Join(base, "..b")))
	assert.False(t, contains(base, filepath.Join(base, "..", "b")))
	assert.False(t, contains(filepath.Join(base, "b"), base))
}

func TestGuard(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Guard(filepath.Join(t.TempDir(), "api")))

	err := Guard(string(filepath.Separator))
	assert.True(t, errors.Is(err, ErrUnsafeRoot), "got %v", err)

	err = Guard(".")
	assert.True(t, errors.Is(err, ErrUnsafeRoot), "got %v", err)

	// Ancestors of the working directory would take it with them.
	for _, root := range []string{"..", filepath.Join("..", "..")} {
		err = Guard(root)
		assert.True(t, errors.Is(err, ErrUnsafeRoot), "%s: got %v", root, err)
	}
	assert.NoError(t, Guard("generated"))

	if home, herr := os.UserHomeDir(); herr == nil {
		assert.True(t, errors.Is(Guard(home), ErrUnsafeRoot))
	}
}
