package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource_FindsMeetingRuns(t *testing.T) {
	found, err := MigrationSource().FindMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, found)

	first := found[0]
	assert.Equal(t, "001_create_meeting_runs.sql", first.Id)
	require.NotEmpty(t, first.Up)
	assert.Contains(t, first.Up[0], "CREATE TABLE IF NOT EXISTS meeting_runs")
	require.NotEmpty(t, first.Down)
	assert.Contains(t, first.Down[0], "DROP TABLE IF EXISTS meeting_runs")
}
