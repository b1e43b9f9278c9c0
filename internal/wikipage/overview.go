package wikipage

import (
	"fmt"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/wikitext"
)

// overviewPage is the single activities overview page. Its title is
// fixed; publishing a project only ever appends one row linking to the
// organisation's activity page.
type overviewPage struct{}

func (overviewPage) Kind() Kind           { return KindOverview }
func (overviewPage) Template() string     { return overviewTemplate }
func (overviewPage) Header() string       { return overviewHeader }
func (overviewPage) TableSection() string { return "Activities list" }

func (overviewPage) Title(document.Document) string { return ActivitiesPath }

func (overviewPage) Sections(doc document.Document) wikitext.SectionPatch {
	orgName, ok := field(doc.Section("organisation"), "name")
	if !ok {
		return wikitext.SectionPatch{}
	}
	organiserName, _ := field(doc.Section("organiser"), "name")
	organiserLink, _ := field(doc.Section("organiser"), "link")

	orgPage := ActivitiesPath + "/" + orgName
	row := fmt.Sprintf("\n| %s\n| %s\n|-",
		wikitext.WikiLink(orgPage, orgName),
		wikitext.ExternalLink(organiserLink, organiserName))
	return wikitext.SectionPatch{
		"Activities list": {Text: row},
	}
}
