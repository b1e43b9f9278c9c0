package wikipage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

func TestRenderNewProjectPage(t *testing.T) {
	text, err := RenderNew(projectPage{}, sampleDocument())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, projectHeader+"\n"))
	assert.Contains(t, text, "== Short Description ==\nMap rural roads\n")
	assert.Contains(t, text, "== Hashtag ==\n<nowiki>#</nowiki>hot-project-1\n")
	assert.Contains(t, text, "\n| 55\n| alice\n|-")

	// Section order follows the template, not the patch map.
	assert.Less(t,
		strings.Index(text, "== Short Description =="),
		strings.Index(text, "== List of Users =="))
}

func TestRenderNewOverviewPage(t *testing.T) {
	text, err := RenderNew(overviewPage{}, sampleDocument())
	require.NoError(t, err)

	assert.Contains(t, text, "== Activities list ==")
	assert.Contains(t, text,
		"\n| [[Organised_Editing/Activities/Humanitarian OSM Team | Humanitarian OSM Team]]\n| [https://hotosm.org HOT]\n|-")
}

func TestRenderPatchedReplacesOnlyPatchedSections(t *testing.T) {
	existing, err := RenderNew(projectPage{}, sampleDocument())
	require.NoError(t, err)

	partial := document.Document{
		"project": map[string]any{"goal": "Map rural roads and bridges"},
	}
	patched, err := RenderPatched(projectPage{}, existing, partial)
	require.NoError(t, err)

	assert.Contains(t, patched, "== Short Description ==\nMap rural roads and bridges\n")
	assert.NotContains(t, patched, "Map rural roads\n== Timeframe ==")
	// Everything else is carried through untouched.
	assert.Contains(t, patched, "== Instructions ==\nUse the latest imagery\n")
	assert.Contains(t, patched, "\n| 55\n| alice\n|-")
}

func TestRenderPatchedAppendsTableRows(t *testing.T) {
	existing, err := RenderNew(projectPage{}, sampleDocument())
	require.NoError(t, err)

	partial := document.Document{
		"project": map[string]any{
			"users": []any{
				map[string]any{"osmId": 99, "username": "bob"},
			},
		},
	}
	patched, err := RenderPatched(projectPage{}, existing, partial)
	require.NoError(t, err)

	// The new contributor lands directly under the header, above alice.
	assert.Contains(t, patched, "\n| 99\n| bob\n|-")
	assert.Contains(t, patched, "\n| 55\n| alice\n|-")
	assert.Less(t, strings.Index(patched, "| bob"), strings.Index(patched, "| alice"))
}

func TestRenderPatchedIsStableWithEmptyPartial(t *testing.T) {
	existing, err := RenderNew(orgActivityPage{}, sampleDocument())
	require.NoError(t, err)

	patched, err := RenderPatched(orgActivityPage{}, existing, document.Document{})
	require.NoError(t, err)
	assert.Equal(t, existing, patched)
}
