package wikipage

import (
	"fmt"
	"strings"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
	"github.com/joaovitor3/osm-tm-communication/internal/wikitext"
)

// projectPage is the per-project documentation page, created once when a
// project is published and titled after the project itself.
type projectPage struct{}

func (projectPage) Kind() Kind           { return KindProject }
func (projectPage) Template() string     { return projectTemplate }
func (projectPage) Header() string       { return projectHeader }
func (projectPage) TableSection() string { return "List of Users" }

func (projectPage) Title(doc document.Document) string {
	return doc.String("project", "title")
}

func (projectPage) Sections(doc document.Document) wikitext.SectionPatch {
	project := doc.Section("project")
	organiser := doc.Section("organiser")
	patch := wikitext.SectionPatch{}

	if goal, ok := field(project, "goal"); ok {
		patch["Short Description"] = body(goal)
	}
	created, hasCreated := field(project, "created")
	due, hasDue := field(project, "dueDate")
	if hasCreated || hasDue {
		patch["Timeframe"] = wikitext.SectionContent{Text: fmt.Sprintf(
			"\n* '''Start Date:''' %s\n\n* '''End Date:''' Estimate %s\n",
			formatDate(created), formatDate(due),
		)}
	}
	if link, ok := field(project, "link"); ok {
		patch["Url"] = body(link)
	}
	if source, ok := field(project, "externalSource"); ok {
		patch["External Sources"] = body(source)
	}
	if comment, ok := field(project, "changesetComment"); ok {
		patch["Hashtag"] = body(wikitext.EscapeHashtag(comment))
	}
	if instructions, ok := field(project, "instructions"); ok {
		patch["Instructions"] = body(instructions)
	}
	if metrics, ok := field(organiser, "metrics"); ok {
		patch["Metrics"] = bullet(metrics)
	}
	if qa, ok := field(organiser, "qualityAssurance"); ok {
		patch["Quality Assurance"] = bullet(qa)
	}
	if rows := userRows(doc.List("project", "users")); rows != "" {
		patch["List of Users"] = wikitext.SectionContent{Text: rows}
	}
	return patch
}

// userRows renders the contributor table rows, one per user, in list
// order. All rows go in as a single splice so a batch of users lands as
// one block under the header.
func userRows(users []any) string {
	var rows strings.Builder
	for _, entry := range users {
		user := entryMap(entry)
		if user == nil {
			continue
		}
		rows.WriteString(fmt.Sprintf("\n| %s\n| %s\n|-",
			formatValue(user["osmId"]), formatValue(user["username"])))
	}
	return rows.String()
}
