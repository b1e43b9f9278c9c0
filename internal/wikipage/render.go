package wikipage

import (
	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/wikitext"
)

// RenderNew produces the full text of a brand-new page from the kind's
// template and a complete document.
func RenderNew(page Page, doc document.Document) (string, error) {
	merger := &wikitext.Merger{
		TableSection: page.TableSection(),
		Header:       page.Header(),
	}
	return merger.Apply(page.Template(), page.Sections(doc))
}

// RenderPatched reapplies a partial document on top of what is already
// on the page. The current section bodies are extracted and carried
// through verbatim, sections derived from the partial document replace
// their counterparts, and table rows are appended to the existing table
// so prior entries survive.
func RenderPatched(page Page, existing string, partial document.Document) (string, error) {
	patch := page.Sections(partial)

	merged := make(wikitext.SectionPatch)
	for title := range wikitext.ExtractSections(existing) {
		merged[title] = wikitext.SectionContent{Verbatim: true}
	}
	for title, content := range patch {
		merged[title] = content
	}

	merger := &wikitext.Merger{
		TableSection: page.TableSection(),
		Header:       page.Header(),
	}
	return merger.Apply(existing, merged)
}
