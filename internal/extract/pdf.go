package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText reads the text layer of the first maxPages pages. The underlying
// parser panics on malformed cross-reference tables, so the whole walk runs
// under a recover and a hostile file degrades to an extraction error.
func pdfText(data []byte, maxPages int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// pdfTables approximates table extraction: text fragments sharing a baseline
// form a row, fragments within the row form cells. A page contributes a table
// only when at least two of its rows hold more than one cell, so plain prose
// pages produce nothing. One table per page at most.
func pdfTables(data []byte, maxPages int) (tables [][][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	tables = [][][]string{}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		if table := tableFromRows(rows); table != nil {
			tables = append(tables, table)
		}
	}
	return tables, nil
}

// tableFromRows turns one page's baseline-grouped rows into a table, or nil
// when the page does not look tabular.
func tableFromRows(rows pdf.Rows) [][]string {
	var table [][]string
	multiCell := 0
	for _, row := range rows {
		var cells []string
		for _, fragment := range row.Content {
			if s := strings.TrimSpace(fragment.S); s != "" {
				cells = append(cells, s)
			}
		}
		if len(cells) == 0 {
			continue
		}
		if len(cells) > 1 {
			multiCell++
		}
		table = append(table, cells)
	}
	if multiCell < 2 {
		return nil
	}
	return table
}
