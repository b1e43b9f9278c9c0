package wikitext

import (
	"fmt"
	"strings"
)

// rowSeparator delimits table rows. New rows are spliced in immediately
// after the separator that closes the header row.
const rowSeparator = "|-\n"

// tableCell is one parsed cell with its span inside the table's raw text.
type tableCell struct {
	text       string // trimmed cell content
	start, end int    // span of the raw (untrimmed) content
}

// Table is the first {| ... |} block of a section, parsed into rows of
// cells. Row 0 is the header. Offsets in the cells index into Raw, not the
// enclosing page, so splices never match the wrong occurrence of a value
// that also appears elsewhere on the page.
type Table struct {
	Raw   string // the full block, "{|" through "|}"
	Start int    // offset of "{|" within the text given to FirstTable
	End   int    // offset one past "|}"
	cells [][]tableCell
}

// FirstTable parses the first table found in text (typically a section's
// Raw). It returns ErrTableNotFound when no {| ... |} block exists.
func FirstTable(text string) (Table, error) {
	start := strings.Index(text, "{|")
	if start < 0 {
		return Table{}, ErrTableNotFound
	}
	end := findTableEnd(text, start+2)
	if end < 0 {
		return Table{}, fmt.Errorf("%w: missing |} terminator", ErrMalformedTable)
	}

	t := Table{
		Raw:   text[start:end],
		Start: start,
		End:   end,
	}
	t.cells = parseCells(t.Raw)
	return t, nil
}

// findTableEnd locates the closing "|}". It accepts the marker at the
// start of a line or directly after a row separator, which is where a
// spliced row without a trailing newline leaves it.
func findTableEnd(text string, from int) int {
	for i := from; ; {
		j := strings.Index(text[i:], "|}")
		if j < 0 {
			return -1
		}
		j += i
		if j == 0 || text[j-1] == '\n' || strings.HasSuffix(text[:j], "|-") {
			return j + 2
		}
		i = j + 2
	}
}

// parseCells splits the table body into rows of cells. Cell lines start
// with '|' or '!'; "||" and "!!" separate cells inline; "|+" captions and
// blank lines are skipped.
func parseCells(raw string) [][]tableCell {
	// Body runs from the end of the "{|" attribute line to before "|}".
	bodyStart := strings.IndexByte(raw, '\n') + 1
	if bodyStart == 0 {
		return nil
	}
	bodyEnd := len(raw) - 2 // strip "|}"

	var rows [][]tableCell
	var current []tableCell

	pos := bodyStart
	for pos < bodyEnd {
		lineEnd := strings.IndexByte(raw[pos:bodyEnd], '\n')
		if lineEnd < 0 {
			lineEnd = bodyEnd
		} else {
			lineEnd += pos
		}
		line := raw[pos:lineEnd]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "|-"):
			if len(current) > 0 {
				rows = append(rows, current)
				current = nil
			}
		case strings.HasPrefix(trimmed, "|+"):
			// caption, not a cell
		case strings.HasPrefix(trimmed, "!") || strings.HasPrefix(trimmed, "|"):
			current = append(current, splitCellLine(raw, pos, line)...)
		}
		pos = lineEnd + 1
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// splitCellLine parses one cell line into cells, tracking each cell's span
// within the table's raw text. lineStart is the line's offset in raw.
func splitCellLine(raw string, lineStart int, line string) []tableCell {
	marker := line[strings.IndexAny(line, "!|"):][:1]
	sep := marker + marker // "||" or "!!"

	// Content begins after the leading marker.
	lead := strings.Index(line, marker) + 1
	var cells []tableCell
	segStart := lead
	for i := lead; i <= len(line); i++ {
		if i == len(line) || (i+1 < len(line) && line[i:i+2] == sep) {
			seg := line[segStart:i]
			cells = append(cells, tableCell{
				text:  strings.TrimSpace(seg),
				start: lineStart + segStart,
				end:   lineStart + i,
			})
			if i < len(line) {
				i++ // skip second separator byte
				segStart = i + 1
			}
		}
	}
	return cells
}

// Rows returns the trimmed cell text of every row. Row 0 is the header.
func (t Table) Rows() [][]string {
	rows := make([][]string, len(t.cells))
	for i, r := range t.cells {
		row := make([]string, len(r))
		for j, c := range r {
			row[j] = c.text
		}
		rows[i] = row
	}
	return rows
}

// ColumnCount returns the number of columns in the table schema, derived
// from the header row alone. Data rows may be shorter after historical
// hand edits and are never consulted.
func (t Table) ColumnCount() (int, error) {
	if len(t.cells) == 0 {
		return 0, fmt.Errorf("%w: no header row", ErrMalformedTable)
	}
	return len(t.cells[0]), nil
}

// InsertionOffset returns the offset within Raw immediately after the row
// separator that closes the header row. Every new row is spliced there, so
// the most recently added entry sits directly under the header. It returns
// ErrMalformedTable when no separator follows the header's last cell.
func (t Table) InsertionOffset() (int, error) {
	if len(t.cells) == 0 || len(t.cells[0]) == 0 {
		return 0, fmt.Errorf("%w: no header row", ErrMalformedTable)
	}
	header := t.cells[0]
	lastCellEnd := header[len(header)-1].end

	sep := strings.Index(t.Raw[lastCellEnd:], rowSeparator)
	if sep < 0 {
		return 0, fmt.Errorf("%w: no row separator after header", ErrMalformedTable)
	}
	return lastCellEnd + sep + len(rowSeparator), nil
}

// InsertRow splices newRow into tableText at offset. It is a pure string
// splice: newRow is caller-constructed and not checked against the column
// count, so a malformed row is a caller bug, not detected here.
func InsertRow(tableText, newRow string, offset int) string {
	return tableText[:offset] + newRow + tableText[offset:]
}

// AppendRow inserts newRow directly below the table's header and returns
// the updated table text.
func (t Table) AppendRow(newRow string) (string, error) {
	offset, err := t.InsertionOffset()
	if err != nil {
		return "", err
	}
	return InsertRow(t.Raw, newRow, offset), nil
}
