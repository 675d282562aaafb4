package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_CreatesRelativeToCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir(filepath.Join("public", "temp"))
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(tmp, "public", "temp"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o660))

	_, err := EnsureDir(dir)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestRemove_IgnoresMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o600))

	require.NoError(t, Remove(a, "", filepath.Join(dir, "missing.png")))

	_, err := os.Stat(a)
	require.True(t, os.IsNotExist(err))
}
