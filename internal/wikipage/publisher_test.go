package wikipage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/mediawiki"
)

// fakeWiki implements Client over an in-memory page map.
type fakeWiki struct {
	pages   map[string]string
	created []string
	edited  []string
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{pages: map[string]string{}}
}

func (f *fakeWiki) PageText(_ context.Context, title string) (string, error) {
	text, ok := f.pages[title]
	if !ok {
		return "", mediawiki.ErrPageNotFound
	}
	return text, nil
}

func (f *fakeWiki) PageExists(_ context.Context, title string) (bool, error) {
	_, ok := f.pages[title]
	return ok, nil
}

func (f *fakeWiki) CreatePage(_ context.Context, title, text string) error {
	if _, ok := f.pages[title]; ok {
		return mediawiki.ErrPageExists
	}
	f.pages[title] = text
	f.created = append(f.created, title)
	return nil
}

func (f *fakeWiki) EditPage(_ context.Context, title, text string) error {
	if _, ok := f.pages[title]; !ok {
		return mediawiki.ErrPageNotFound
	}
	f.pages[title] = text
	f.edited = append(f.edited, title)
	return nil
}

func TestPublishProjectOnEmptyWiki(t *testing.T) {
	wiki := newFakeWiki()
	pub := NewPublisher(wiki)

	require.NoError(t, pub.PublishProject(context.Background(), sampleDocument()))

	assert.Equal(t, []string{
		"Organised_Editing/Activities",
		"Organised_Editing/Activities/Humanitarian OSM Team",
		"Map Rural Roads",
	}, wiki.created)
	assert.Empty(t, wiki.edited)

	overview := wiki.pages["Organised_Editing/Activities"]
	assert.Contains(t, overview, "[[Organised_Editing/Activities/Humanitarian OSM Team | Humanitarian OSM Team]]")
}

func TestPublishProjectAppendsToExistingPages(t *testing.T) {
	wiki := newFakeWiki()
	pub := NewPublisher(wiki)
	require.NoError(t, pub.PublishProject(context.Background(), sampleDocument()))

	second := sampleDocument()
	second.Section("project")["title"] = "Map Health Facilities"
	require.NoError(t, pub.PublishProject(context.Background(), second))

	assert.Equal(t, []string{
		"Organised_Editing/Activities",
		"Organised_Editing/Activities/Humanitarian OSM Team",
		"Map Rural Roads",
		"Map Health Facilities",
	}, wiki.created)
	assert.Equal(t, []string{
		"Organised_Editing/Activities",
		"Organised_Editing/Activities/Humanitarian OSM Team",
	}, wiki.edited)

	orgPage := wiki.pages["Organised_Editing/Activities/Humanitarian OSM Team"]
	assert.Contains(t, orgPage, "[[Map Rural Roads | Map Rural Roads]]")
	assert.Contains(t, orgPage, "[[Map Health Facilities | Map Health Facilities]]")
	// Most recent project sits on top of the list.
	assert.Less(t,
		strings.Index(orgPage, "Map Health Facilities"),
		strings.Index(orgPage, "Map Rural Roads"))
}

func TestPublishProjectRejectsDuplicateProjectPage(t *testing.T) {
	wiki := newFakeWiki()
	pub := NewPublisher(wiki)
	require.NoError(t, pub.PublishProject(context.Background(), sampleDocument()))

	err := pub.PublishProject(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, mediawiki.ErrPageExists)
}

func TestUpdateProject(t *testing.T) {
	wiki := newFakeWiki()
	pub := NewPublisher(wiki)
	require.NoError(t, pub.PublishProject(context.Background(), sampleDocument()))

	partial := document.Document{
		"project": map[string]any{
			"title": "Map Rural Roads",
			"goal":  "Map rural roads and bridges",
		},
	}
	require.NoError(t, pub.UpdateProject(context.Background(), partial))

	page := wiki.pages["Map Rural Roads"]
	assert.Contains(t, page, "Map rural roads and bridges")
	assert.Contains(t, page, "== Instructions ==\nUse the latest imagery\n")
}

func TestUpdateProjectMissingPage(t *testing.T) {
	pub := NewPublisher(newFakeWiki())

	partial := document.Document{
		"project": map[string]any{"title": "Never Published"},
	}
	err := pub.UpdateProject(context.Background(), partial)
	assert.ErrorIs(t, err, mediawiki.ErrPageNotFound)
}

func TestUpdateProjectRequiresTitle(t *testing.T) {
	pub := NewPublisher(newFakeWiki())

	err := pub.UpdateProject(context.Background(), document.Document{})
	assert.Error(t, err)
}
