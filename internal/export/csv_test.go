package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	f, err := Create(path)
	require.NoError(t, err)

	require.NoError(t, f.WriteRow([]string{"Exchange", "MaxNotional"}))
	require.NoError(t, f.WriteRow([]string{"NYSE", "1000000"}))
	assert.Equal(t, 2, f.Rows())

	// rows are flushed before close
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Exchange,MaxNotional\nNYSE,1000000\n", string(data))

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}

func TestCreateTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\n"), 0o644))

	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestQuoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.WriteRow([]string{"Exchange/Symbol", "a,b", `say "hi"`}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Exchange/Symbol,\"a,b\",\"say \"\"hi\"\"\"\n", string(data))
}

func TestWriteAfterClose(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "out.csv"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Error(t, f.WriteRow([]string{"x"}))
}

func TestCreateInMissingDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope", "out.csv"))
	assert.Error(t, err)
}
