package core

import "fmt"

// Sheet ranges of the merged (v2) layout: project header on row 1 and the
// project on row 2, segment header on row 5, samples on rows 6-7, segment
// input from row 8. Rows 3-4 hold template guidance and are never read.
const (
	mergedProjectFirst = 2
	mergedProjectLast  = 2
	mergedSegmentFirst = 8
)

func init() {
	Register(10, splitAdapter{grammar: GrammarSplit})
	Register(20, splitAdapter{grammar: GrammarCombined})
	Register(30, mergedAdapter{})
	Register(40, legacyAdapter{})
}

func missingSheet(kind SectionKind, name string) Section {
	return Section{
		Kind:   kind,
		Name:   name,
		Errors: []ValidationError{sectionError("FILE", fmt.Sprintf("必須シート「%s」が見つかりません", name))},
	}
}

// requireRows reports a present sheet section that holds no data rows.
func requireRows(s Section) Section {
	if len(s.Rows) == 0 && len(s.Errors) == 0 {
		s.Errors = append(s.Errors, sectionError(s.Name,
			fmt.Sprintf("シート「%s」に入力行がありません", s.Name)))
	}
	return s
}

// sheetOrMissing cuts a section from the named sheet, or returns an empty
// section carrying a missing-sheet error.
func sheetOrMissing(wb *Workbook, key string, kind SectionKind, layout *Layout, from, to int) Section {
	sheet, ok := wb.Sheet(key)
	if !ok {
		return missingSheet(kind, key)
	}
	return sheetSection(kind, sheet, layout, from, to)
}

// splitAdapter reads the v4 layout (segment+TG location sheet plus a
// visit-measurement sheet) and the older v3 combined sheet.
type splitAdapter struct {
	grammar Grammar
}

func (a splitAdapter) Grammar() Grammar { return a.grammar }

func (a splitAdapter) Detect(src *Source) bool {
	if src.Kind != SourceWorkbook {
		return false
	}
	if a.grammar == GrammarSplit {
		return src.Workbook.has(sheetSplitCombined) || src.Workbook.has(sheetVisit)
	}
	return src.Workbook.has(sheetCombined)
}

func (a splitAdapter) Sections(src *Source) ([]Section, []ValidationError) {
	wb := src.Workbook
	sections := []Section{sheetOrMissing(wb, sheetProject, SectionProject, project6Layout, 2, 0)}

	combinedKey := sheetCombined
	if a.grammar == GrammarSplit {
		combinedKey = sheetSplitCombined
	}

	if sheet, ok := wb.Sheet(combinedKey); ok {
		segs, locs := splitCombined(sheet)
		sections = append(sections, requireRows(segs), locs)
	} else if a.grammar == GrammarCombined {
		sections = append(sections, missingSheet(SectionSegment, combinedKey))
	}

	if a.grammar == GrammarSplit {
		if sheet, ok := wb.Sheet(sheetVisit); ok {
			visit := sheetSection(SectionLocation, sheet, visitLocationLayout, 2, 0)
			visit.Category = CategoryVisitMeasurement
			sections = append(sections, visit)
		}
	}
	return sections, nil
}

// splitCombined separates the combined sheet into a SEGMENT section (the
// first row of each segment name) and a LOCATION section (every row with
// location columns filled).
func splitCombined(sheet *Sheet) (Section, Section) {
	segs := Section{Kind: SectionSegment, Name: sheet.Name, Layout: combinedSegmentLayout}
	locs := Section{Kind: SectionLocation, Name: sheet.Name, Layout: combinedLocationLayout, Category: CategoryTargeting}

	seen := make(map[string]bool)
	for _, r := range dataRows(rowsFrom(sheet.Rows, 2), combinedSegmentLayout) {
		key := nameKey(r.Cell(0))
		if !seen[key] {
			seen[key] = true
			segs.Rows = append(segs.Rows, r)
		}
		if hasLocationPart(r) {
			locs.Rows = append(locs.Rows, r)
		}
	}
	return segs, locs
}

func hasLocationPart(r Row) bool {
	for i := len(combinedSegmentLayout.Columns); i < len(combinedLocationLayout.Columns); i++ {
		if r.Cell(i) != "" {
			return true
		}
	}
	return false
}

func rowsFrom(rows []Row, first int) []Row {
	for i, r := range rows {
		if r.Number >= first {
			return rows[i:]
		}
	}
	return nil
}

// mergedAdapter reads the v2 layout: project and segments share one sheet,
// locations live on the location list sheet.
type mergedAdapter struct{}

func (mergedAdapter) Grammar() Grammar { return GrammarMerged }

func (mergedAdapter) Detect(src *Source) bool {
	return src.Kind == SourceWorkbook && src.Workbook.has(sheetMerged)
}

func (mergedAdapter) Sections(src *Source) ([]Section, []ValidationError) {
	wb := src.Workbook
	sheet, _ := wb.Sheet(sheetMerged)

	return []Section{
		sheetSection(SectionProject, sheet, project10Layout, mergedProjectFirst, mergedProjectLast),
		requireRows(sheetSection(SectionSegment, sheet, mergedSegmentLayout, mergedSegmentFirst, 0)),
		requireRows(targeting(sheetOrMissing(wb, sheetLocation, SectionLocation, sheetLocationLayout, 2, 0))),
	}, nil
}

// legacyAdapter reads the v1 layout of three separate sheets.
type legacyAdapter struct{}

func (legacyAdapter) Grammar() Grammar { return GrammarLegacy }

func (legacyAdapter) Detect(src *Source) bool {
	return src.Kind == SourceWorkbook && src.Workbook.has(sheetProject, sheetSegment, sheetLocation)
}

func (legacyAdapter) Sections(src *Source) ([]Section, []ValidationError) {
	wb := src.Workbook
	return []Section{
		sheetOrMissing(wb, sheetProject, SectionProject, project6Layout, 2, 0),
		requireRows(sheetOrMissing(wb, sheetSegment, SectionSegment, sheetSegmentLayout, 2, 0)),
		requireRows(targeting(sheetOrMissing(wb, sheetLocation, SectionLocation, sheetLocationLayout, 2, 0))),
	}, nil
}

func targeting(s Section) Section {
	s.Category = CategoryTargeting
	return s
}
