// Package wikitext implements structural editing of the limited wikitext
// subset used by the Organised Editing documentation pages: titled sections
// delimited by runs of '=' markers, at most one sortable table per section,
// and simple internal/external hyperlinks. It is not a general MediaWiki
// parser; sections and tables are tracked as explicit byte spans over the
// original text so edits are index arithmetic instead of substring search.
package wikitext

import (
	"fmt"
	"strings"
)

// Section is a titled region of a page. All offsets index into the source
// text the section was parsed from. A section's span runs from its heading
// to the start of the next heading at the same or a shallower level, so it
// includes any subsections. The untitled preamble, when present, appears as
// a section with an empty title and level 0.
type Section struct {
	Title     string // trimmed heading text; "" for the preamble
	Level     int    // number of '=' pairs; 0 for the preamble
	Start     int    // offset of the heading line (or 0 for the preamble)
	MarkerEnd int    // offset just past the closing '=' run of the heading
	BodyStart int    // offset of the first byte after the heading line
	End       int    // offset one past the section, subsections included
	Raw       string // src[Start:End]
}

// Document is the parsed decomposition of one page's text. It is derived
// from raw text on every read and never persisted.
type Document struct {
	src      string
	sections []Section
}

// Parse decomposes text into its ordered section spans. Parsing never
// fails: text with no headings yields a single untitled preamble section.
func Parse(text string) *Document {
	d := &Document{src: text}

	type heading struct {
		start, markerEnd, bodyStart, level int
		title                              string
	}
	var headings []heading

	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		var next int
		if lineEnd < 0 {
			lineEnd = len(text)
			next = len(text) + 1
		} else {
			lineEnd += lineStart
			next = lineEnd + 1
		}

		if level, title, markerLen, ok := parseHeading(text[lineStart:lineEnd]); ok {
			bodyStart := next
			if bodyStart > len(text) {
				bodyStart = len(text) // heading on the final, unterminated line
			}
			headings = append(headings, heading{
				start:     lineStart,
				markerEnd: lineStart + markerLen,
				bodyStart: bodyStart,
				level:     level,
				title:     title,
			})
		}
		lineStart = next
	}

	if len(headings) == 0 || headings[0].start > 0 {
		end := len(text)
		if len(headings) > 0 {
			end = headings[0].start
		}
		d.sections = append(d.sections, Section{
			Title:     "",
			Level:     0,
			Start:     0,
			MarkerEnd: 0,
			BodyStart: 0,
			End:       end,
			Raw:       text[:end],
		})
	}

	for i, h := range headings {
		end := len(text)
		for _, later := range headings[i+1:] {
			if later.level <= h.level {
				end = later.start
				break
			}
		}
		d.sections = append(d.sections, Section{
			Title:     h.title,
			Level:     h.level,
			Start:     h.start,
			MarkerEnd: h.markerEnd,
			BodyStart: h.bodyStart,
			End:       end,
			Raw:       text[h.start:end],
		})
	}
	return d
}

// parseHeading reports whether line is a section heading. It returns the
// nesting level, the trimmed title, and the length of the full marker token
// ("== Title ==") excluding any trailing whitespace.
func parseHeading(line string) (level int, title string, markerLen int, ok bool) {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 2 || trimmed[0] != '=' {
		return 0, "", 0, false
	}
	open := 0
	for open < len(trimmed) && trimmed[open] == '=' {
		open++
	}
	close := 0
	for close < len(trimmed) && trimmed[len(trimmed)-1-close] == '=' {
		close++
	}
	// "====" alone is not a heading, nor is "= x" without a closing run.
	if open+close >= len(trimmed) || close == 0 {
		return 0, "", 0, false
	}
	title = strings.TrimSpace(trimmed[open : len(trimmed)-close])
	if title == "" {
		return 0, "", 0, false
	}
	level = open
	if close < level {
		level = close
	}
	return level, title, len(trimmed), true
}

// Source returns the exact text the document was parsed from.
func (d *Document) Source() string { return d.src }

// Sections returns every section in document order, preamble first when one
// exists. Parent sections precede (and span) their children.
func (d *Document) Sections() []Section { return d.sections }

// Find returns the first section at any level whose title equals the given
// string after trimming. Titles are never case-folded.
func (d *Document) Find(title string) (Section, error) {
	want := strings.TrimSpace(title)
	for _, s := range d.sections {
		if s.Title != "" && s.Title == want {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("%w: %q", ErrSectionNotFound, title)
}

// Index returns the position of the titled section within Sections.
func (d *Document) Index(title string) (int, error) {
	want := strings.TrimSpace(title)
	for i, s := range d.sections {
		if s.Title != "" && s.Title == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrSectionNotFound, title)
}

// Children returns the immediate child sections of parent, in document
// order: sections at exactly parent.Level+1 whose spans lie inside parent's.
func (d *Document) Children(parent Section) []Section {
	var kids []Section
	for _, s := range d.sections {
		if s.Start >= parent.BodyStart && s.End <= parent.End && s.Level == parent.Level+1 {
			kids = append(kids, s)
		}
	}
	return kids
}

// Reassemble reconstructs the original text from the non-overlapping spans:
// the preamble plus every section not nested inside an earlier one. This is
// the round-trip identity the edit algorithms rely on.
func (d *Document) Reassemble() string {
	var b strings.Builder
	b.Grow(len(d.src))
	next := 0
	for _, s := range d.sections {
		if s.Start < next {
			continue // nested inside the previous span
		}
		b.WriteString(s.Raw)
		next = s.End
	}
	return b.String()
}
