package slidegen

import (
	"sort"
	"strings"
)

// ReplaceInParagraph rewrites {{key}} tokens in one paragraph's ordered runs,
// in place, preserving every run's formatting. Two layouts are handled:
//
//  1. A token split across three consecutive runs: a run containing "{{", a
//     run whose whole text is a known key, and a run containing "}}". Only the
//     markers are stripped; surrounding text in the first and third run stays.
//     The scan then resumes AT the third run, whose remaining text may open
//     the next token.
//  2. A token fully contained in a single run, replaced as a substring for
//     every known key.
//
// Any other split is left as literal text. The pass is left to right and
// order dependent; keys inside a single run are applied in sorted order so
// the result is deterministic.
func ReplaceInParagraph(paragraph *Node, keyMap map[string]string) {
	runs := paragraph.ChildrenNamed(nsDrawing, "r")
	keys := sortedKeys(keyMap)

	i := 0
	for i < len(runs) {
		if strings.Contains(runText(runs[i]), "{{") && i+2 < len(runs) {
			key := runText(runs[i+1])
			if value, ok := keyMap[key]; ok && strings.Contains(runText(runs[i+2]), "}}") {
				setRunText(runs[i], strings.ReplaceAll(runText(runs[i]), "{{", ""))
				setRunText(runs[i+1], value)
				setRunText(runs[i+2], strings.ReplaceAll(runText(runs[i+2]), "}}", ""))
				// Advance by two, not three: the closing run may already
				// contain the "{{" of the next token.
				i += 2
				continue
			}
		}
		text := runText(runs[i])
		for _, key := range keys {
			text = strings.ReplaceAll(text, "{{"+key+"}}", keyMap[key])
		}
		if text != runText(runs[i]) {
			setRunText(runs[i], text)
		}
		i++
	}
}

// ReplaceInShapes rewrites tokens in every text frame of a slide. Table cells
// are not touched here; tables are filled row by row by FillSummaryTable.
func ReplaceInShapes(slide *Node, keyMap map[string]string) {
	for _, txBody := range slide.FindAll(nsPresentation, "txBody") {
		for _, paragraph := range txBody.ChildrenNamed(nsDrawing, "p") {
			ReplaceInParagraph(paragraph, keyMap)
		}
	}
}

// replaceInCell rewrites tokens in one table cell.
func replaceInCell(cell *Node, keyMap map[string]string) {
	for _, txBody := range cell.ChildrenNamed(nsDrawing, "txBody") {
		for _, paragraph := range txBody.ChildrenNamed(nsDrawing, "p") {
			ReplaceInParagraph(paragraph, keyMap)
		}
	}
}

// blankCell empties the text of every run in a table cell. Runs are kept, so
// the table keeps its shape and formatting.
func blankCell(cell *Node) {
	for _, txBody := range cell.ChildrenNamed(nsDrawing, "txBody") {
		for _, paragraph := range txBody.ChildrenNamed(nsDrawing, "p") {
			for _, run := range paragraph.ChildrenNamed(nsDrawing, "r") {
				setRunText(run, "")
			}
		}
	}
}

// dataTable returns the slide's data table: the first table with more than
// one row. Nil when the slide has no qualifying table.
func dataTable(slide *Node) *Node {
	for _, tbl := range slide.FindAll(nsDrawing, "tbl") {
		if len(tbl.ChildrenNamed(nsDrawing, "tr")) > 1 {
			return tbl
		}
	}
	return nil
}

// FillSummaryTable fills the slide's data table with one page of ranked
// totals: row i is substituted from page[i], and rows beyond the page are
// blanked rather than removed, keeping the table's row count constant.
func FillSummaryTable(slide *Node, page []GroupTotal) bool {
	tbl := dataTable(slide)
	if tbl == nil {
		return false
	}
	for ri, row := range tbl.ChildrenNamed(nsDrawing, "tr") {
		if ri < len(page) {
			cellMap := map[string]string{
				TokenBranch:  page[ri].Branch,
				TokenProduct: page[ri].Product,
				TokenTotal:   page[ri].Formatted,
			}
			for _, cell := range row.ChildrenNamed(nsDrawing, "tc") {
				replaceInCell(cell, cellMap)
			}
		} else {
			for _, cell := range row.ChildrenNamed(nsDrawing, "tc") {
				blankCell(cell)
			}
		}
	}
	return true
}

// runText returns the text of a run, "" when the run has no text element.
func runText(run *Node) string {
	t := run.ChildNamed(nsDrawing, "t")
	if t == nil {
		return ""
	}
	return t.Text
}

// setRunText replaces the text of a run, creating the text element if needed.
func setRunText(run *Node, text string) {
	if t := run.ChildNamed(nsDrawing, "t"); t != nil {
		t.Text = text
		return
	}
	run.Children = append(run.Children, &Node{Space: nsDrawing, Local: "t", Text: text})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
