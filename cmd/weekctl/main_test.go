package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunResolvesWeek(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--now", "2025-03-12", "--tz", "UTC", "--week", "11"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Nädal 11 • 10.3.2025")
	assert.Contains(t, out.String(), "weekStart: 1741564800000")
}

func TestRunRejectsUnknownWeek(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--now", "2025-03-12", "--tz", "UTC", "-w", "99"}, &out)
	assert.Error(t, err)
}

func TestRunCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--now", "2025-03-12", "--tz", "UTC", "-c"}, &out))

	assert.Contains(t, out.String(), "10-16")
	assert.Regexp(t, `total\s+71`, out.String())
}

func TestRunDensityFromStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"0-10":[0,2],"2-15":[1]}`), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), []string{"--now", "2025-03-12", "--tz", "UTC", "--state", path}, &out)
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^10\s+2\s+\.`, out.String())
	assert.Contains(t, out.String(), "best: E 10:00 (2) I, M")
}

func TestRunDensityFromDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"team":{"1741564800000":{"4-18":[5]}}}`), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), []string{"--now", "2025-03-12", "--tz", "UTC", "--data-file", path, "-m", "team"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "best: R 18:00 (1) H")

	err = run(context.Background(), []string{"--data-file", path}, &out)
	assert.Error(t, err)
}

func TestRunEmptyStateReportsNoSelections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--tz", "UTC", "-s", path}, &out))
	assert.Contains(t, out.String(), "no selections")
}
