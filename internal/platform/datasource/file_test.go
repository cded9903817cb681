package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	src := NewFileSource(path)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Persons, 2)
	assert.Equal(t, "file "+path, src.Describe())
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.json")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_PicksFileSource(t *testing.T) {
	src, err := Open(context.Background(), Config{Location: "data/data.yaml"})
	require.NoError(t, err)
	fs, ok := src.(*FileSource)
	require.True(t, ok)
	assert.Equal(t, "data/data.yaml", fs.Path)
}

func TestOpen_BadPostgresURL(t *testing.T) {
	_, err := Open(context.Background(), Config{Location: "postgres://%zz"})
	assert.Error(t, err)
}
