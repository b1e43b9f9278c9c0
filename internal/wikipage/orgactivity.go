package wikipage

import (
	"fmt"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/wikitext"
)

// orgActivityPage is an organisation's activity page, listing who the
// organisation is and every project it runs. It is created the first
// time one of the organisation's projects is published and patched on
// every publication after that.
type orgActivityPage struct{}

func (orgActivityPage) Kind() Kind           { return KindOrgActivity }
func (orgActivityPage) Template() string     { return orgActivityTemplate }
func (orgActivityPage) Header() string       { return orgActivityHeader }
func (orgActivityPage) TableSection() string { return "Project list" }

func (orgActivityPage) Title(doc document.Document) string {
	return ActivitiesPath + "/" + doc.String("organisation", "name")
}

func (orgActivityPage) Sections(doc document.Document) wikitext.SectionPatch {
	org := doc.Section("organisation")
	organiser := doc.Section("organiser")
	project := doc.Section("project")
	patch := wikitext.SectionPatch{}

	orgName, hasOrgName := field(org, "name")
	if orgLink, ok := field(org, "link"); ok && hasOrgName {
		patch["Organisation"] = body(wikitext.ExternalLink(orgLink, orgName))
	}
	if description, ok := field(org, "description"); ok {
		patch["Description"] = body(description)
	}
	organiserName, hasOrganiser := field(organiser, "name")
	organiserLink, _ := field(organiser, "link")
	if hasOrganiser {
		patch["Organiser"] = body(wikitext.ExternalLink(organiserLink, organiserName))
	}
	if title, ok := field(project, "title"); ok {
		manager, _ := field(project, "projectManager")
		status, _ := field(project, "status")
		patch["Project list"] = wikitext.SectionContent{Text: fmt.Sprintf(
			"\n| %s\n| %s\n| %s\n| %s\n|-",
			wikitext.WikiLink(title, title),
			wikitext.ExternalLink(organiserLink, organiserName),
			manager, status,
		)}
	}
	return patch
}
