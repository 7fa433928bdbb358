package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add stock balances", "add_stock_balances"},
		{"Add-Stock-Balances", "add_stock_balances"},
		{"add__stock__balances", "add_stock_balances"},
		{"Orders V2", "orders_v2"},
		{"  padded  ", "padded"},
		{"weird!@#chars", "weirdchars"},
		{"trailing_", "trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}

func TestCreateFiles(t *testing.T) {
	dir := t.TempDir()

	pair, err := CreateFiles(dir, "add money movements")
	require.NoError(t, err)

	assert.Len(t, pair.Version, 14)
	assert.True(t, strings.HasSuffix(pair.UpPath, "_add_money_movements.up.sql"))
	assert.True(t, strings.HasSuffix(pair.DownPath, "_add_money_movements.down.sql"))

	up, err := os.ReadFile(pair.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add money movements")

	_, err = os.Stat(pair.DownPath)
	require.NoError(t, err)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()

	names, err := ListFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, f := range []string{
		"20250101000002_second.up.sql",
		"20250101000002_second.down.sql",
		"20250101000001_first.up.sql",
		"20250101000001_first.down.sql",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}

	names, err = ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250101000001_first", "20250101000002_second"}, names)
}

func TestListFilesMissingDir(t *testing.T) {
	names, err := ListFiles(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
