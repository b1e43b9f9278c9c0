package wikitext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSectionsFlat(t *testing.T) {
	text := "== Short Description ==\nMap rural roads\n== Url ==\nhttps://x/1\n"
	got := ExtractSections(text)

	require.Contains(t, got, "Short Description")
	require.Contains(t, got, "Url")
	assert.Equal(t, "Map rural roads\n", got["Short Description"].Text)
	assert.Equal(t, "https://x/1\n", got["Url"].Text)
}

func TestExtractSectionsNested(t *testing.T) {
	text := "== Organisation ==\n=== Description ===\nHumanitarian mapping\n=== Link ===\nhttps://hot.example\n== Url ==\nhttps://x/1\n"
	got := ExtractSections(text)

	org, ok := got["Organisation"]
	require.True(t, ok)
	assert.Empty(t, org.Text)
	require.Len(t, org.Children, 2)
	assert.Equal(t, ChildSection{Title: "Description", Text: "Humanitarian mapping\n"}, org.Children[0])
	assert.Equal(t, ChildSection{Title: "Link", Text: "https://hot.example\n"}, org.Children[1])

	assert.Equal(t, "https://x/1\n", got["Url"].Text)
}

func TestRenderExtractRoundTrip(t *testing.T) {
	// Every literal value placed by the patch must come back out of the
	// rendered page, byte for byte once the heading newline is accounted
	// for (the patch's leading newline terminates the heading line).
	m := &Merger{TableSection: "List of Users"}
	patch := SectionPatch{
		"Short Description": {Text: "\nMap rural roads\n"},
		"Url":               {Text: "\nhttps://x/1\n"},
	}

	out, err := m.Apply(projectTemplate, patch)
	require.NoError(t, err)

	got := ExtractSections(out)
	for title, want := range patch {
		section, ok := got[title]
		require.True(t, ok, "section %q missing from extraction", title)
		assert.Equal(t, strings.TrimPrefix(want.Text, "\n"), section.Text)
	}
}

func TestExtractTableRowsUnwrapsLinks(t *testing.T) {
	rows, err := ExtractTableRows(projectTable)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Project One", "Org", "alice", "Active"}, rows[0])
}

func TestExtractTableRowsDropsExtraColumns(t *testing.T) {
	text := "{|\n|-\n! ID\n! Name\n|-\n| 1\n| a\n| stray cell\n|-\n|}\n"
	rows, err := ExtractTableRows(text)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"1", "a"}, rows[0])
}

func TestExtractTableRowsNoTable(t *testing.T) {
	_, err := ExtractTableRows("== Empty ==\n")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		in, target, label string
	}{
		{"[[Activities/Org | Org]]", "Activities/Org", "Org"},
		{"[[Solo]]", "Solo", "Solo"},
		{"[https://x/1 Project One]", "https://x/1", "Project One"},
		{"[https://x/1]", "https://x/1", "https://x/1"},
		{"plain text", "plain text", "plain text"},
	}
	for _, tt := range tests {
		target, label := ParseLink(tt.in)
		assert.Equal(t, tt.target, target, "target of %q", tt.in)
		assert.Equal(t, tt.label, label, "label of %q", tt.in)
	}
}

func TestLinkHelpersRoundTrip(t *testing.T) {
	target, label := ParseLink(WikiLink("Activities/Org", "Org"))
	assert.Equal(t, "Activities/Org", target)
	assert.Equal(t, "Org", label)

	target, label = ParseLink(ExternalLink("https://x/1", "Project One"))
	assert.Equal(t, "https://x/1", target)
	assert.Equal(t, "Project One", label)
}

func TestEscapeHashtag(t *testing.T) {
	assert.Equal(t, "<nowiki>#</nowiki>hotProject", EscapeHashtag("#hotProject"))
}
