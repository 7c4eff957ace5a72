package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"help/backups.md":     {Data: []byte("# Backups\n\nPrior content is rotated to .bak")},
		"help/option-yes.txt": {Data: []byte("Answer every prompt with yes")},
		"help/config.txxt":    {Data: []byte("Configuration Guide")},
		"help/ignore.json":    {Data: []byte("{}")},
	}
}

func TestLoad(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		c, err := Load(testFS(), Options{})
		require.NoError(t, err)

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"backups", true, "# Backups\n\nPrior content is rotated to .bak"},
			{"option-yes", true, "Answer every prompt with yes"},
			{"config", false, ""},
			{"ignore", false, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := c.Lookup(tt.name)
				assert.Equal(t, tt.expected, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		c, err := Load(testFS(), Options{Extensions: []string{".txxt"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"config"}, c.Names())
	})

	t.Run("nil file system", func(t *testing.T) {
		c, err := Load(nil, Options{})
		require.NoError(t, err)
		assert.Empty(t, c.Names())
	})
}

func TestLookupFlagStyle(t *testing.T) {
	c, err := Load(testFS(), Options{})
	require.NoError(t, err)

	for _, name := range []string{"--yes", "-yes", "yes"} {
		topic, ok := c.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "option-yes", topic.Name)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "homestead", Short: "provision a machine"}
	root.AddCommand(&cobra.Command{Use: "terraform", Short: "build the environment", Run: func(*cobra.Command, []string) {}})
	return root
}

func TestInstall(t *testing.T) {
	run := func(t *testing.T, args ...string) string {
		t.Helper()
		root := newRoot()
		_, err := Install(root, testFS(), Options{})
		require.NoError(t, err)

		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return out.String()
	}

	t.Run("topic list", func(t *testing.T) {
		out := run(t, "help", "topics")
		assert.Contains(t, out, "General topics:\n  backups")
		assert.Contains(t, out, "Option topics:\n  --yes")
		assert.Contains(t, out, "Use 'homestead help <topic>'")
	})

	t.Run("topic", func(t *testing.T) {
		out := run(t, "help", "backups")
		assert.True(t, strings.HasPrefix(out, "# Backups"))
	})

	t.Run("command help", func(t *testing.T) {
		out := run(t, "help", "terraform")
		assert.Contains(t, out, "build the environment")
	})
}

func TestLoadExt(t *testing.T) {
	c, err := Load(testFS(), Options{})
	require.NoError(t, err)
	topic, ok := c.Lookup("backups")
	require.True(t, ok)
	assert.Equal(t, ".md", topic.Ext())
	assert.Equal(t, "help/backups.md", topic.Path)
}

func TestInstallRendersWithRenderer(t *testing.T) {
	root := newRoot()
	upper := RendererFunc(func(content, ext string) string { return strings.ToUpper(content) })
	_, err := Install(root, testFS(), Options{Renderer: upper})
	require.NoError(t, err)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"help", "--yes"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "ANSWER EVERY PROMPT WITH YES", out.String())
}
