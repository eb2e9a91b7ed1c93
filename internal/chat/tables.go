package chat

import "strings"

// Table is a pipe-delimited markdown table found in agent reply text.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// DetectTables scans text for pipe-delimited markdown tables. A table is a
// run of consecutive lines each containing at least two pipe characters,
// where the first line holds the headers. Separator rows (dashes and colons
// only) are excluded from the data rows.
func DetectTables(text string) []Table {
	var tables []Table
	var current []string

	flush := func() {
		if t, ok := parseTable(current); ok {
			tables = append(tables, t)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.Count(line, "|") >= 2 {
			current = append(current, line)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func parseTable(lines []string) (Table, bool) {
	var headers []string
	var rows [][]string

	for _, line := range lines {
		cells := splitRow(line)
		if len(cells) == 0 || isSeparatorRow(cells) {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}

	if headers == nil || len(rows) == 0 {
		return Table{}, false
	}
	return Table{Headers: headers, Rows: rows}, true
}

// splitRow splits a markdown table row into trimmed cells, dropping the empty
// fragments produced by leading and trailing pipes.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	for _, c := range strings.Split(line, "|") {
		cells = append(cells, strings.TrimSpace(c))
	}
	return cells
}

// isSeparatorRow reports whether every cell is made only of dashes and
// optional alignment colons, like the |---|:---:| row under a header.
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			return false
		}
		if strings.Trim(c, "-:") != "" {
			return false
		}
	}
	return true
}
