package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	prev := ""
	for _, m := range all {
		assert.NotEmpty(t, m.Name, m.ID)
		assert.NotNil(t, m.Up, m.ID)
		assert.NotNil(t, m.Down, m.ID)
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		assert.Greater(t, m.ID, prev, "ids must sort in application order")
		seen[m.ID] = true
		prev = m.ID
	}
}

func TestFind(t *testing.T) {
	m, ok := find("004")
	require.True(t, ok)
	assert.Equal(t, "create_change_notifications", m.Name)

	_, ok = find("999")
	assert.False(t, ok)
}

func TestAllModels(t *testing.T) {
	assert.Len(t, AllModels(), 2)
}
