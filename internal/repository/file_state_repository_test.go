package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	"github.com/noah-isme/meeting-planner-api/pkg/storage"
)

func newFileRepo(t *testing.T) (*FileStateRepository, string) {
	path := filepath.Join(t.TempDir(), "data", "meetings.json")
	file, err := storage.NewJSONFile(path)
	require.NoError(t, err)
	return NewFileStateRepository(file), path
}

func TestFileStateRepositoryMissingIsEmpty(t *testing.T) {
	repo, _ := newFileRepo(t)
	state, err := repo.Get(context.Background(), "team", 1741564800000)
	require.NoError(t, err)
	assert.NotNil(t, state)
	assert.Empty(t, state)
}

func TestFileStateRepositoryPutOverwritesWeekOnly(t *testing.T) {
	repo, path := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "team", 100, availability.Serialized{"0-10": {1}}))
	require.NoError(t, repo.Put(ctx, "team", 200, availability.Serialized{"1-12": {0, 2}}))
	require.NoError(t, repo.Put(ctx, "other", 100, availability.Serialized{"6-19": {3}}))
	require.NoError(t, repo.Put(ctx, "team", 100, availability.Serialized{"2-11": {4}}))

	state, err := repo.Get(ctx, "team", 100)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"2-11": {4}}, state)

	state, err = repo.Get(ctx, "team", 200)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"1-12": {0, 2}}, state)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"other"`)
	assert.Contains(t, string(raw), `"100"`)
}

func TestFileStateRepositoryNilStoresEmptyObject(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, "team", 100, nil))

	state, err := repo.Get(ctx, "team", 100)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{}, state)
}

func TestFileStateRepositoryHonoursCancelledContext(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Get(ctx, "team", 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Put(ctx, "team", 100, nil), context.Canceled)
}

func TestFileStateRepositoryToleratesLegacyEntries(t *testing.T) {
	repo, path := newFileRepo(t)
	ctx := context.Background()
	legacy := `{
		"other": {"1": []},
		"team": {"1738540800000": {"0-10": [0, 1]}},
		"legacy": {"5": {"0-10": "x", "1-12": [2, -1, 1.5]}, "6": "broken"},
		"flat": [1, 2, 3]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	state, err := repo.Get(ctx, "team", 1738540800000)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"0-10": {0, 1}}, state)

	state, err = repo.Get(ctx, "legacy", 5)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"1-12": {2}}, state)

	state, err = repo.Get(ctx, "legacy", 6)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{}, state)

	state, err = repo.Get(ctx, "flat", 1)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{}, state)

	require.NoError(t, repo.Put(ctx, "team", 1741564800000, availability.Serialized{"2-11": {3}}))
	state, err = repo.Get(ctx, "team", 1738540800000)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"0-10": {0, 1}}, state)
	state, err = repo.Get(ctx, "team", 1741564800000)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"2-11": {3}}, state)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"other"`)
	assert.Contains(t, string(raw), `"broken"`)
	assert.Contains(t, string(raw), `"flat"`)
}
