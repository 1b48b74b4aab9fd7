package core

// sectionizer.go groups rows into PROJECT, SEGMENT and LOCATION sections.
//
// Marker grammars run the state machine in Sectionize:
//
//	NONE --[PROJECT]--> PROJECT --[SEGMENT]--> SEGMENT --[LOCATION:x]--> LOCATION(x)
//
// Any marker may follow any state. Sheet grammars cut fixed row ranges with
// sheetSection instead. Both paths drop comment, blank and sample rows.

import (
	"regexp"
	"strings"
)

const (
	markerProject  = "[PROJECT]"
	markerSegment  = "[SEGMENT]"
	markerLocation = "[LOCATION]"
)

var (
	locationMarker = regexp.MustCompile(`^\[LOCATION\s*:\s*(.*?)\s*\]$`)

	sampleWords = []string{"サンプル", "sample", "(例)", "例:"}
)

// marker classifies a first cell as a section marker. For keyed LOCATION
// markers the key is returned with its original case.
func marker(cell string) (kind SectionKind, key string, ok bool) {
	folded := strings.TrimSpace(foldWidth(cell))
	upper := strings.ToUpper(folded)

	switch upper {
	case markerProject:
		return SectionProject, "", true
	case markerSegment:
		return SectionSegment, "", true
	case markerLocation:
		return SectionLocation, "", true
	}
	if m := locationMarker.FindStringSubmatch(upper); m != nil {
		// Recover the key from the folded (not upper-cased) cell.
		key := folded[strings.Index(folded, ":")+1 : len(folded)-1]
		return SectionLocation, strings.TrimSpace(key), true
	}
	return SectionNone, "", false
}

// isCommentRow reports whether the first cell starts with '#'.
func isCommentRow(r Row) bool {
	return strings.HasPrefix(strings.TrimSpace(foldWidth(r.Cell(0))), "#")
}

// isSkippable reports rows that never carry data in any state.
func isSkippable(r Row) bool {
	return r.IsBlank() || isCommentRow(r)
}

// IsSampleRow reports whether a row is template filler: an empty first cell,
// a first cell mentioning a sample/example, or a literal placeholder.
func IsSampleRow(r Row) bool {
	return isSample(r, true)
}

func isSample(r Row, blankFirst bool) bool {
	first := strings.ToLower(foldWidth(r.Cell(0)))
	if first == "" {
		return blankFirst
	}
	if first == "xxx" || first == "---" {
		return true
	}
	for _, w := range sampleWords {
		if strings.Contains(first, w) {
			return true
		}
	}
	return false
}

// Sectionize runs the marker state machine over rows. Each returned section
// still holds its header row first. Rows before the first marker are
// reported once as a warning and ignored.
func Sectionize(rows []Row) ([]Section, []ValidationError) {
	var (
		sections []Section
		errs     []ValidationError
		current  *Section
		stray    bool
	)

	flush := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for _, r := range rows {
		if isSkippable(r) {
			continue
		}

		if kind, key, ok := marker(r.Cell(0)); ok {
			flush()
			current = &Section{Kind: kind, Name: markerName(kind, key), GroupKey: key}
			if kind == SectionLocation {
				current.Category = CategoryTargeting
			}
			continue
		}

		if current == nil {
			if !stray {
				stray = true
				errs = append(errs, ValidationError{
					Section:  "FILE",
					Row:      r.Number,
					Message:  "セクションマーカー（[PROJECT] など）より前の行は無視されました",
					Value:    r.Cell(0),
					Code:     CodeOutsideSection,
					Severity: SeverityWarning,
				})
			}
			continue
		}
		current.Rows = append(current.Rows, r)
	}
	flush()

	return sections, errs
}

func markerName(kind SectionKind, key string) string {
	switch kind {
	case SectionProject:
		return markerProject
	case SectionSegment:
		return markerSegment
	default:
		if key == "" {
			return markerLocation
		}
		return "[LOCATION:" + key + "]"
	}
}

// dataRows drops skippable and sample rows. An empty first cell marks a
// sample row unless the layout's first column is optional.
func dataRows(rows []Row, l *Layout) []Row {
	blankFirst := l == nil || len(l.Columns) == 0 || l.Columns[0].Required
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if isSkippable(r) || isSample(r, blankFirst) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sheetSection cuts rows numbered [from, to] (to <= 0 means open-ended) out
// of a sheet and drops non-data rows.
func sheetSection(kind SectionKind, sheet *Sheet, layout *Layout, from, to int) Section {
	var picked []Row
	for _, r := range sheet.Rows {
		if r.Number < from || (to > 0 && r.Number > to) {
			continue
		}
		picked = append(picked, r)
	}
	return Section{Kind: kind, Name: sheet.Name, Layout: layout, Rows: dataRows(picked, layout)}
}
