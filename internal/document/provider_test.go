package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirProvider_Text(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.txt"),
		[]byte("Net Consideration : USD 29,851,455.46\n"), 0o644))

	p := NewDirProvider(dir)

	text, ok, err := p.Text(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, text, "Net Consideration")
}

func TestDirProvider_MissingFileIsAbsent(t *testing.T) {
	p := NewDirProvider(t.TempDir())

	_, ok, err := p.Text(42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirProvider_BlankFileIsAbsent(t *testing.T) {
	// A whitespace-only file must be indistinguishable from a missing one.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.txt"), []byte("  \n\t\n"), 0o644))

	p := NewDirProvider(dir)

	_, ok, err := p.Text(7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirProvider_Path(t *testing.T) {
	p := NewDirProvider("External_Data")
	assert.Equal(t, filepath.Join("External_Data", "3.txt"), p.Path(3))
}
