package slidegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateReport reads sales records from dataPath, expands the template at
// templatePath slide by slide according to each slide's role, and writes the
// merged deck to outputPath. Intermediate documents are created next to the
// output file and removed afterwards unless KeepIntermediates is set.
func (g *Generator) GenerateReport(templatePath, dataPath, outputPath string) (*Result, error) {
	records, err := ReadRecords(dataPath)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NewEmptyDataError(dataPath)
	}
	g.logger.Info("read %d records from %s", len(records), dataPath)

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, NewDocumentError("create output directory", outputDir, err)
	}

	g.report(0, 100, "analyzing template")
	splitFiles, err := SplitTemplate(templatePath, outputDir)
	if err != nil {
		return nil, err
	}
	if len(splitFiles) == 0 {
		return nil, NewTemplateError(-1, "template has no slides")
	}

	clean := newCleaner(g.logger, g.config.KeepIntermediates)
	defer clean.flush()
	for _, splitFile := range splitFiles {
		clean.track(splitFile)
	}

	step := 100 / len(splitFiles)
	var partFiles []string
	for i, splitFile := range splitFiles {
		role, err := g.classifySlide(splitFile)
		if err != nil {
			return nil, err
		}
		g.report(i*step, 100, fmt.Sprintf("generating slide %d (%s)", i+1, role))
		g.logger.WithField("slide", i).Debug("classified as %s", role)

		partPath := filepath.Join(outputDir, fmt.Sprintf("part_%d.pptx", i))
		switch role {
		case RoleIndividual:
			err = g.buildIndividualPart(splitFile, partPath, records, i, clean)
		case RoleSummary:
			err = g.buildSummaryPart(splitFile, partPath, records, i, clean)
		default:
			err = copyDocument(splitFile, partPath)
		}
		if err != nil {
			return nil, err
		}
		clean.track(partPath)
		clean.remove(splitFile)
		partFiles = append(partFiles, partPath)
	}

	g.report(90, 100, "merging parts")
	final, err := mergeDocuments(partFiles)
	if err != nil {
		return nil, err
	}
	if err := final.Save(outputPath); err != nil {
		return nil, err
	}
	for _, partFile := range partFiles {
		clean.remove(partFile)
	}
	g.report(100, 100, "done")
	g.logger.Info("wrote %d slides to %s", final.SlideCount(), outputPath)

	return &Result{
		Records:    len(records),
		Slides:     final.SlideCount(),
		OutputPath: outputPath,
	}, nil
}

func (g *Generator) report(current, total int, message string) {
	if g.progress != nil {
		g.progress(current, total, message)
	}
}

// classifySlide reads the combined shape text of a single-slide document and
// applies the generator's role policy to the template tokens found in it.
func (g *Generator) classifySlide(pathName string) (Role, error) {
	pres, err := OpenPresentation(pathName)
	if err != nil {
		return RoleStatic, err
	}
	text, err := pres.SlideText(0)
	if err != nil {
		return RoleStatic, err
	}
	return g.policy(ExtractTokens(text, g.fields)), nil
}

// buildIndividualPart renders one copy of the slide per record, substituting
// each record's fields for the slide's tokens, and merges the copies into a
// single document at partPath.
func (g *Generator) buildIndividualPart(splitFile, partPath string, records []Record, index int, clean *cleaner) error {
	source, err := os.ReadFile(splitFile)
	if err != nil {
		return NewDocumentError("read", splitFile, err)
	}
	dir := filepath.Dir(partPath)

	var rowFiles []string
	for row, record := range records {
		keyMap := make(map[string]string, len(g.fields))
		for token, column := range g.fields {
			keyMap[token] = record.Get(column)
		}
		rowPath := filepath.Join(dir, fmt.Sprintf("_part_%d_row_%d.pptx", index, row))
		if err := renderSlide(source, keyMap, nil, rowPath); err != nil {
			return err
		}
		clean.track(rowPath)
		rowFiles = append(rowFiles, rowPath)
	}

	return finishPart(rowFiles, partPath, clean)
}

// buildSummaryPart aggregates the records into ranked totals, fills the
// slide's data table one page at a time and merges the pages into a single
// document at partPath.
func (g *Generator) buildSummaryPart(splitFile, partPath string, records []Record, index int, clean *cleaner) error {
	groups := AggregateRecords(records, g.fields, g.config.UnitSuffix)
	if len(groups) == 0 {
		return NewEmptyDataError("aggregated totals")
	}
	pages := Paginate(groups, g.config.RowsPerPage)

	start, end := DateRange(records, g.dateColumn)
	dateMap := map[string]string{
		TokenStartDate: start,
		TokenEndDate:   end,
	}

	source, err := os.ReadFile(splitFile)
	if err != nil {
		return NewDocumentError("read", splitFile, err)
	}
	dir := filepath.Dir(partPath)

	var pageFiles []string
	for pageNum, page := range pages {
		pagePath := filepath.Join(dir, fmt.Sprintf("_part_%d_page_%d.pptx", index, pageNum))
		if err := renderSlide(source, dateMap, page, pagePath); err != nil {
			return err
		}
		clean.track(pagePath)
		pageFiles = append(pageFiles, pagePath)
	}

	return finishPart(pageFiles, partPath, clean)
}

// renderSlide instantiates a single-slide document from source, substitutes
// keyMap in its shapes, optionally fills its data table with page, and saves
// the result. A missing data table is not an error; the page is skipped.
func renderSlide(source []byte, keyMap map[string]string, page []GroupTotal, outPath string) error {
	pres, err := NewPresentation(source)
	if err != nil {
		return err
	}
	tree, err := pres.SlideTree(0)
	if err != nil {
		return err
	}
	ReplaceInShapes(tree, keyMap)
	if page != nil {
		if !FillSummaryTable(tree, page) {
			Warn("no data table found while filling %s", filepath.Base(outPath))
		}
	}
	if err := pres.SetSlideTree(0, tree); err != nil {
		return err
	}
	return pres.Save(outPath)
}

// finishPart merges the rendered per-record or per-page documents into a
// single part document and removes the inputs.
func finishPart(paths []string, partPath string, clean *cleaner) error {
	merged, err := mergeDocuments(paths)
	if err != nil {
		return err
	}
	if err := merged.Save(partPath); err != nil {
		return err
	}
	for _, p := range paths {
		clean.remove(p)
	}
	return nil
}

// mergeDocuments opens the first document and appends the slides of the rest
// onto it, returning the combined presentation unsaved.
func mergeDocuments(paths []string) (*Presentation, error) {
	merged, err := OpenPresentation(paths[0])
	if err != nil {
		return nil, err
	}
	for _, p := range paths[1:] {
		src, err := OpenPresentation(p)
		if err != nil {
			return nil, err
		}
		if err := merged.AppendSlides(src); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func copyDocument(from, to string) error {
	data, err := os.ReadFile(from)
	if err != nil {
		return NewDocumentError("read", from, err)
	}
	if err := os.WriteFile(to, data, 0644); err != nil {
		return NewDocumentError("write", to, err)
	}
	return nil
}

// DefaultOutputName builds an output file name from the date range of the
// records, falling back to the data file's name when no dates are present.
func DefaultOutputName(dataPath string, records []Record, dateColumn string) string {
	start, end := DateRange(records, dateColumn)
	if start == "" || end == "" {
		stem := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
		if stem == "" || stem == "." {
			return "sales-report.pptx"
		}
		return stem + "-report.pptx"
	}
	return fmt.Sprintf("sales-report(%s-%s).pptx", start, end)
}
