// Package wikipage renders the documentation pages a Tasking Manager
// project is published to: the activities overview page, the
// organisation's activity page and the project's own page. Each page
// kind knows its template, its section vocabulary and how to derive
// section content from a structured document; the generic splice work
// is delegated to internal/wikitext.
package wikipage

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/wikitext"
)

// Kind names a documented page variant.
type Kind string

const (
	KindOverview    Kind = "overview"
	KindOrgActivity Kind = "organisation"
	KindProject     Kind = "project"
)

// ErrUnknownKind is returned by ForKind for a kind outside the registry.
var ErrUnknownKind = errors.New("wikipage: unknown page kind")

// Page is one page kind. Sections derives a section patch from a
// document, emitting only the sections whose source fields are present,
// so the same method serves both the create flow (full document) and the
// edit flow (partial document).
type Page interface {
	Kind() Kind
	Title(doc document.Document) string
	Template() string
	Header() string
	TableSection() string
	Sections(doc document.Document) wikitext.SectionPatch
}

var registry = map[Kind]Page{
	KindOverview:    overviewPage{},
	KindOrgActivity: orgActivityPage{},
	KindProject:     projectPage{},
}

// ForKind resolves a page kind against the registry.
func ForKind(kind Kind) (Page, error) {
	page, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return page, nil
}

// body wraps a value the way section bodies are laid out on the
// activity pages: the value alone on its own line.
func body(s string) wikitext.SectionContent {
	return wikitext.SectionContent{Text: "\n" + s + "\n"}
}

// bullet renders a single-item bullet list body.
func bullet(s string) wikitext.SectionContent {
	return wikitext.SectionContent{Text: "\n* " + s + "\n"}
}

// field reads a named field as display text. Absent and empty fields
// report false so partial documents skip their sections.
func field(section map[string]any, key string) (string, bool) {
	v, ok := section[key]
	if !ok || v == nil {
		return "", false
	}
	s := formatValue(v)
	return s, s != ""
}

// formatValue renders a scalar the way it should appear in wikitext.
// JSON decoding hands numbers over as float64, YAML as int; both must
// print without a decimal point for values like OSM ids.
func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// entryMap normalizes a list entry to a mapping, covering both decoder
// shapes.
func entryMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case document.Document:
		return m
	default:
		return nil
	}
}

// formatDate renders a document timestamp as "02 January 2006". Values
// that do not parse are passed through untouched rather than dropped.
func formatDate(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return wikitext.FormatDate(t)
		}
	}
	return raw
}
