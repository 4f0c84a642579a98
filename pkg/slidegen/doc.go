// Package slidegen generates sales report decks from a PPTX template and a
// tabular data file.
//
// A template deck contains one or more slides, each carrying {{key}} style
// placeholder tokens in its text frames and tables. Each template slide is
// classified by the tokens it contains:
//
//   - individual: one output slide is produced per input record, with the
//     record's fields substituted into the placeholders
//   - summary: records are grouped and summed, and the slide is repeated once
//     per page of ranked totals, its data table filled row by row
//   - static: the slide is passed through unchanged
//
// The filled slides are merged back into a single deck in template order.
//
// # Quick Start
//
//	gen := slidegen.NewGenerator()
//	result, err := gen.GenerateReport("template.pptx", "data.csv", "report.pptx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("generated %d slides from %d records\n", result.Slides, result.Records)
//
// Data files may be CSV (UTF-8, header row), XLSX (first sheet, header row) or
// legacy XLS. The mapping from placeholder token to data column is configurable
// through GeneratorOptions; see DefaultFieldMap for the default token set.
//
// Substitution preserves run formatting: tokens are rewritten inside the
// existing formatted runs and no run is deleted or reformatted. Tokens split
// across more than three runs are a documented limitation and are left as
// literal text.
package slidegen
