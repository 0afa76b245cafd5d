package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAllTemplates(t *testing.T) {
	ClearCache()

	for _, name := range All() {
		cfg, err := Load(name)
		require.NoError(t, err, "template %s should load", name)
		assert.Equal(t, name, cfg.Name)
		assert.NotEmpty(t, cfg.DisplayName)
		assert.NotEmpty(t, cfg.Description)
		assert.GreaterOrEqual(t, len(cfg.Sections), 3)
		assert.NotEmpty(t, cfg.Design.Theme)
		assert.True(t, strings.HasPrefix(cfg.Design.AccentColor, "#"))
	}
}

func TestLoadUnknownName(t *testing.T) {
	_, err := Load("futuristic")
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestLoadReturnsCachedConfig(t *testing.T) {
	ClearCache()

	first, err := Load(Modern)
	require.NoError(t, err)

	second, err := Load(Modern)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, Creative, Clamp(Creative))
	assert.Equal(t, DefaultName, Clamp(""))
	assert.Equal(t, DefaultName, Clamp("nonsense"))
}

func TestStructureRoundTrip(t *testing.T) {
	cfg, err := Load(Professional)
	require.NoError(t, err)

	out, err := cfg.Structure()
	require.NoError(t, err)
	assert.Contains(t, out, "name: professional")
	assert.Contains(t, out, "header_style: classic")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestHeaderStylesAreDistinctish(t *testing.T) {
	// The four bundled templates should not all share a header style;
	// the renderer keys layout decisions off it.
	styles := make(map[string]bool)
	for _, name := range All() {
		cfg, err := Load(name)
		require.NoError(t, err)
		styles[cfg.Design.HeaderStyle] = true
	}
	assert.GreaterOrEqual(t, len(styles), 3)
}
