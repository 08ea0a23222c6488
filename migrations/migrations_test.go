package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"cofeed/pkg/models"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrderedAndReversible(t *testing.T) {
	goose.SetBaseFS(FS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	collected, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, collected, 3)
	for i, m := range collected {
		assert.Equal(t, int64(i+1), m.Version)
	}

	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	for _, name := range names {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestMigrationsCreateEveryModelTable(t *testing.T) {
	var schema strings.Builder
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	for _, name := range names {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		schema.Write(body)
	}

	type tabler interface{ TableName() string }
	for _, m := range models.All() {
		table := m.(tabler).TableName()
		assert.Contains(t, schema.String(), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}
