package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileUpdateKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "meetings.json")
	file, err := NewJSONFile(path)
	require.NoError(t, err)

	doc := map[string]int{}
	require.NoError(t, file.Read(&doc))
	assert.Empty(t, doc)

	require.NoError(t, file.Update(&doc, func() error {
		doc["a"] = 1
		return nil
	}))
	_, err = os.Stat(path + backupSuffix)
	assert.True(t, os.IsNotExist(err))

	doc = map[string]int{}
	require.NoError(t, file.Update(&doc, func() error {
		assert.Equal(t, 1, doc["a"])
		doc["b"] = 2
		return nil
	}))

	backup := map[string]int{}
	require.NoError(t, (&JSONFile{path: path + backupSuffix}).Read(&backup))
	assert.Equal(t, map[string]int{"a": 1}, backup)

	current := map[string]int{}
	require.NoError(t, file.Read(&current))
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, current)

	_, err = os.Stat(path + tmpSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestJSONFileUpdateAbortsOnMutateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.json")
	file, err := NewJSONFile(path)
	require.NoError(t, err)

	doc := map[string]int{}
	err = file.Update(&doc, func() error { return os.ErrInvalid })
	require.ErrorIs(t, err, os.ErrInvalid)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestJSONFileRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	file, err := NewJSONFile(path)
	require.NoError(t, err)

	doc := map[string]int{}
	assert.Error(t, file.Read(&doc))
}

func TestLocalStorageLifecycle(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("team/week.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "team/week.csv", rel)

	f, err := store.Open(rel)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = store.Save("../escape.csv", []byte("x"))
	assert.Error(t, err)
	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)

	deleted, err := store.CleanupOlderThan(-time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("team", "week.csv")}, deleted)
	require.NoError(t, store.Delete(rel))
}
