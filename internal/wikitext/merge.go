package wikitext

import (
	"fmt"
	"log"
	"strings"
)

// ChildSection is one entry of a nested section patch. Children are kept
// ordered so rendered pages are deterministic.
type ChildSection struct {
	Title string
	Text  string
}

// SectionContent is the patch value for a single section: either literal
// replacement text or an ordered set of child sections exactly one level
// deeper. Setting both is a caller error surfaced by Merger.Apply.
// Verbatim re-emits the section exactly as it appears in the template,
// which the edit flow uses to carry unchanged sections through a render.
type SectionContent struct {
	Text     string
	Children []ChildSection
	Verbatim bool
}

// SectionPatch maps section titles to their new content. A key whose title
// does not appear in the target text is skipped, never an error: partial
// schemas are expected to reference sections that newer templates dropped.
type SectionPatch map[string]SectionContent

// Merger applies SectionPatches to template or page text. TableSection
// names the one section whose patch text is a table row to append rather
// than body text to splice; Header is the literal text emitted ahead of
// the first section.
type Merger struct {
	TableSection string
	Header       string
}

// Apply walks the template's sections in document order and produces the
// reconstituted page text: Header first, then for every section whose
// title is patched, the section's original title marker followed by the
// patched content. Sections absent from the patch are dropped; patch keys
// absent from the template are logged and skipped. A patch against the
// table section delegates to the table editor, and a missing or malformed
// table surfaces as an error since that is a template configuration bug.
func (m *Merger) Apply(template string, patch SectionPatch) (string, error) {
	doc := Parse(template)

	var out strings.Builder
	if m.Header != "" {
		out.WriteString(m.Header)
		out.WriteString("\n")
	}

	matched := make(map[string]bool, len(patch))
	for _, section := range doc.Sections() {
		if section.Title == "" {
			continue
		}
		content, ok := patch[section.Title]
		if !ok {
			continue
		}
		matched[section.Title] = true

		if content.Verbatim {
			out.WriteString(section.Raw)
			continue
		}
		if len(content.Children) == 0 {
			if err := m.renderLeaf(&out, doc, section, content.Text); err != nil {
				return "", err
			}
			continue
		}
		if content.Text != "" {
			return "", fmt.Errorf("section %q: patch has both text and children", section.Title)
		}
		if err := m.renderChildren(&out, doc, section, content.Children); err != nil {
			return "", err
		}
	}

	for title := range patch {
		if !matched[title] {
			if title == m.TableSection {
				return "", fmt.Errorf("table section: %w: %q", ErrSectionNotFound, title)
			}
			log.Printf("WARNING: patch key %q not present in template, skipped", title)
		}
	}
	return out.String(), nil
}

// renderLeaf emits one patched section: its original marker token followed
// by the replacement text, or the row-augmented table when the section is
// the designated table section.
func (m *Merger) renderLeaf(out *strings.Builder, doc *Document, section Section, text string) error {
	if section.Title == m.TableSection {
		updated, err := appendTableRow(section.Raw, text)
		if err != nil {
			return fmt.Errorf("section %q: %w", section.Title, err)
		}
		out.WriteString(updated)
		return nil
	}
	out.WriteString(doc.Source()[section.Start:section.MarkerEnd])
	out.WriteString(text)
	return nil
}

// renderChildren emits the parent marker once, then each child section
// under a synthesized marker one level deeper. Children carrying their own
// children are rejected: patches support a single nesting level.
func (m *Merger) renderChildren(out *strings.Builder, doc *Document, parent Section, children []ChildSection) error {
	out.WriteString(doc.Source()[parent.Start:parent.MarkerEnd])
	for _, child := range children {
		if child.Title == m.TableSection {
			childSection, err := m.findChild(doc, parent, child.Title)
			if err != nil {
				return err
			}
			updated, err := appendTableRow(childSection.Raw, child.Text)
			if err != nil {
				return fmt.Errorf("section %q: %w", child.Title, err)
			}
			out.WriteString("\n")
			out.WriteString(updated)
			continue
		}
		out.WriteString(ChildMarker(parent.Level, child.Title))
		out.WriteString(child.Text)
	}
	return nil
}

// findChild resolves a child title against the parent's template children.
func (m *Merger) findChild(doc *Document, parent Section, title string) (Section, error) {
	for _, c := range doc.Children(parent) {
		if c.Title == title {
			return c, nil
		}
	}
	return Section{}, fmt.Errorf("table section: %w: %q under %q", ErrSectionNotFound, title, parent.Title)
}

// appendTableRow locates the first table of the section text and splices
// row directly below its header, returning the full section text with the
// augmented table in place.
func appendTableRow(sectionRaw, row string) (string, error) {
	table, err := FirstTable(sectionRaw)
	if err != nil {
		return "", err
	}
	updated, err := table.AppendRow(row)
	if err != nil {
		return "", err
	}
	return sectionRaw[:table.Start] + updated + sectionRaw[table.End:], nil
}

// ChildMarker renders the heading token for a synthesized child section
// one level below the given parent level.
func ChildMarker(parentLevel int, title string) string {
	marker := strings.Repeat("=", parentLevel+1)
	return fmt.Sprintf("\n%s %s %s", marker, title, marker)
}
