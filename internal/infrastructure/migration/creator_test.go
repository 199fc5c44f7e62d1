package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Bills Table")
	require.NoError(t, err)

	assert.Contains(t, mf.UpPath, "add_bills_table.up.sql")
	assert.Contains(t, mf.DownPath, "add_bills_table.down.sql")

	_, err = os.Stat(mf.UpPath)
	assert.NoError(t, err)
	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Bills Table", "add_bills_table"},
		{"add-payment-index", "add_payment_index"},
		{"weird!!chars##", "weirdchars"},
		{"trailing space ", "trailing_space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in))
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Len(t, migrations, 1)

	t.Run("missing directory returns empty list", func(t *testing.T) {
		migrations, err := ListMigrations(dir + "/nonexistent")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
