package wikipage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

func sampleDocument() document.Document {
	return document.Document{
		"project": map[string]any{
			"title":            "Map Rural Roads",
			"goal":             "Map rural roads",
			"created":          "2020-01-01T01:01:01.001Z",
			"dueDate":          "2020-03-01T01:01:01.001Z",
			"changesetComment": "#hot-project-1",
			"instructions":     "Use the latest imagery",
			"externalSource":   "Local road inventory",
			"link":             "https://tasks.example.org/projects/1",
			"projectManager":   "carol",
			"status":           "ACTIVE",
			"users": []any{
				map[string]any{"osmId": 55, "username": "alice"},
			},
		},
		"organisation": map[string]any{
			"name":        "Humanitarian OSM Team",
			"description": "Humanitarian mapping worldwide",
			"link":        "https://hotosm.org",
		},
		"organiser": map[string]any{
			"name":             "HOT",
			"link":             "https://hotosm.org",
			"metrics":          "Changesets reviewed weekly",
			"qualityAssurance": "OSMCha validation",
		},
	}
}

func TestForKind(t *testing.T) {
	for _, kind := range []Kind{KindOverview, KindOrgActivity, KindProject} {
		page, err := ForKind(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, page.Kind())
	}

	_, err := ForKind(Kind("diary"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestPageTitles(t *testing.T) {
	doc := sampleDocument()

	assert.Equal(t, "Organised_Editing/Activities", overviewPage{}.Title(doc))
	assert.Equal(t,
		"Organised_Editing/Activities/Humanitarian OSM Team",
		orgActivityPage{}.Title(doc))
	assert.Equal(t, "Map Rural Roads", projectPage{}.Title(doc))
}

func TestProjectSections(t *testing.T) {
	patch := projectPage{}.Sections(sampleDocument())

	assert.Equal(t, "\nMap rural roads\n", patch["Short Description"].Text)
	assert.Equal(t,
		"\n* '''Start Date:''' 01 January 2020\n\n* '''End Date:''' Estimate 01 March 2020\n",
		patch["Timeframe"].Text)
	assert.Equal(t, "\nhttps://tasks.example.org/projects/1\n", patch["Url"].Text)
	assert.Equal(t, "\nLocal road inventory\n", patch["External Sources"].Text)
	assert.Equal(t, "\n<nowiki>#</nowiki>hot-project-1\n", patch["Hashtag"].Text)
	assert.Equal(t, "\nUse the latest imagery\n", patch["Instructions"].Text)
	assert.Equal(t, "\n* Changesets reviewed weekly\n", patch["Metrics"].Text)
	assert.Equal(t, "\n* OSMCha validation\n", patch["Quality Assurance"].Text)
	assert.Equal(t, "\n| 55\n| alice\n|-", patch["List of Users"].Text)
}

func TestProjectSectionsPartialDocument(t *testing.T) {
	partial := document.Document{
		"project": map[string]any{"goal": "New goal"},
	}
	patch := projectPage{}.Sections(partial)

	require.Len(t, patch, 1)
	assert.Equal(t, "\nNew goal\n", patch["Short Description"].Text)
}

func TestOrgActivitySections(t *testing.T) {
	patch := orgActivityPage{}.Sections(sampleDocument())

	assert.Equal(t,
		"\n[https://hotosm.org Humanitarian OSM Team]\n",
		patch["Organisation"].Text)
	assert.Equal(t, "\nHumanitarian mapping worldwide\n", patch["Description"].Text)
	assert.Equal(t, "\n[https://hotosm.org HOT]\n", patch["Organiser"].Text)
	assert.Equal(t,
		"\n| [[Map Rural Roads | Map Rural Roads]]\n| [https://hotosm.org HOT]\n| carol\n| ACTIVE\n|-",
		patch["Project list"].Text)
}

func TestOverviewSections(t *testing.T) {
	patch := overviewPage{}.Sections(sampleDocument())

	require.Len(t, patch, 1)
	assert.Equal(t,
		"\n| [[Organised_Editing/Activities/Humanitarian OSM Team | Humanitarian OSM Team]]\n| [https://hotosm.org HOT]\n|-",
		patch["Activities list"].Text)

	assert.Empty(t, overviewPage{}.Sections(document.Document{}))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "55", formatValue(55))
	assert.Equal(t, "55", formatValue(float64(55))) // JSON number
	assert.Equal(t, "alice", formatValue("alice"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "01 January 2020", formatDate("2020-01-01T01:01:01.001Z"))
	assert.Equal(t, "01 March 2020", formatDate("2020-03-01"))
	assert.Equal(t, "sometime soon", formatDate("sometime soon"))
}
