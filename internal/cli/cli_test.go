package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "tiers", "level", "allocate", "series"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "tiers", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestAllocate(t *testing.T) {
	t.Run("JSON schedule", func(t *testing.T) {
		out, err := run(t, "allocate", "--total", "100.00", "-n", "3", "--first", "2024-01-31", "--format", "json")
		require.NoError(t, err)

		var rows []installmentRow
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 3)
		assert.Equal(t, "2024-02-29", rows[1].DueDate)
		assert.EqualValues(t, 3334, rows[2].Amount)
	})

	t.Run("Text table ends with the total", func(t *testing.T) {
		out, err := run(t, "allocate", "--total", "100", "-n", "3", "--first", "2024-01-31")
		require.NoError(t, err)
		assert.Contains(t, out, "33.34")
		assert.Contains(t, out, "100.00")
	})

	t.Run("Too many installments", func(t *testing.T) {
		_, err := run(t, "allocate", "--total", "100", "-n", "361", "--first", "2024-01-31")
		assert.Error(t, err)
	})

	t.Run("Missing flag", func(t *testing.T) {
		_, err := run(t, "allocate", "--total", "100")
		assert.Error(t, err)
	})
}

func TestSeries(t *testing.T) {
	out, err := run(t, "series", "--anchor", "2023-01-31", "--horizon", "3", "--format", "json")
	require.NoError(t, err)

	var dates []string
	require.NoError(t, json.Unmarshal([]byte(out), &dates))
	assert.Equal(t, []string{"2023-02-28", "2023-03-31", "2023-04-30"}, dates)

	_, err = run(t, "series", "--anchor", "2023-01-31", "--horizon", "0")
	assert.Error(t, err)
}

func TestTiersAndLevel(t *testing.T) {
	t.Run("Built-in table", func(t *testing.T) {
		out, err := run(t, "tiers")
		require.NoError(t, err)
		assert.Contains(t, out, "Novice")
		assert.Contains(t, out, "Legend")
	})

	t.Run("Custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiers.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[[tiers]]
index = 1
name = "Seed"
min_xp = 0
max_xp = 9

[[tiers]]
index = 2
name = "Tree"
min_xp = 10
`), 0o600))

		out, err := run(t, "level", "5", "-f", path)
		require.NoError(t, err)
		assert.Contains(t, out, "level 1 (Seed)")
		assert.Contains(t, out, "5 to Tree")

		out, err = run(t, "level", "50", "-f", path)
		require.NoError(t, err)
		assert.Contains(t, out, "max level")
	})

	t.Run("Bad total", func(t *testing.T) {
		_, err := run(t, "level", "lots")
		assert.Error(t, err)
	})
}

func TestMigrateList(t *testing.T) {
	out, err := run(t, "migrate", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "001_users.sql")
	assert.Contains(t, out, "003_finance.sql")
}
