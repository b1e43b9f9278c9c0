package wikitext

import "strings"

// ExtractSections inverts Merger.Apply for the edit flow: it walks the
// current page text and captures each level-2 section's content, keyed by
// title. A section with level-3 children is captured as an ordered child
// list instead of flat text, mirroring SectionPatch's shape, so a partial
// update can be merged against what is actually on the page.
func ExtractSections(text string) SectionPatch {
	doc := Parse(text)
	patch := make(SectionPatch)

	for _, section := range doc.Sections() {
		if section.Title == "" || section.Level != 2 {
			continue
		}
		children := doc.Children(section)
		if len(children) == 0 {
			patch[section.Title] = SectionContent{
				Text: doc.Source()[section.BodyStart:section.End],
			}
			continue
		}
		content := SectionContent{}
		for _, child := range children {
			content.Children = append(content.Children, ChildSection{
				Title: child.Title,
				Text:  doc.Source()[child.BodyStart:child.End],
			})
		}
		patch[section.Title] = content
	}
	return patch
}

// ExtractTableRows decodes the data rows of the first table in text,
// header stripped, with hyperlink markup unwrapped in every cell so the
// raw identifier/display values come back out. Cells beyond the header's
// column count are dropped, not preserved.
func ExtractTableRows(text string) ([][]string, error) {
	table, err := FirstTable(text)
	if err != nil {
		return nil, err
	}
	columns, err := table.ColumnCount()
	if err != nil {
		return nil, err
	}

	all := table.Rows()
	var rows [][]string
	for _, row := range all[1:] {
		if isEmptyRow(row) {
			continue
		}
		record := make([]string, 0, columns)
		for i, cell := range row {
			if i == columns {
				break
			}
			_, label := ParseLink(cell)
			record = append(record, label)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// ParseLink unwraps wiki and external hyperlink markup, returning the link
// target and the display label. Plain text comes back unchanged as both.
//
//	[[Page | label]] -> ("Page", "label")
//	[https://x label] -> ("https://x", "label")
func ParseLink(cell string) (target, label string) {
	s := strings.TrimSpace(cell)
	switch {
	case strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]"):
		inner := s[2 : len(s)-2]
		if t, l, ok := strings.Cut(inner, "|"); ok {
			return strings.TrimSpace(t), strings.TrimSpace(l)
		}
		inner = strings.TrimSpace(inner)
		return inner, inner
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner := s[1 : len(s)-1]
		if t, l, ok := strings.Cut(inner, " "); ok {
			return strings.TrimSpace(t), strings.TrimSpace(l)
		}
		inner = strings.TrimSpace(inner)
		return inner, inner
	default:
		return s, s
	}
}
