package core

import "fmt"

// bracketAdapter reads delimited text with [PROJECT], [SEGMENT] and
// [LOCATION:<segment>] markers. Each section starts with a header row.
type bracketAdapter struct{}

func init() {
	Register(50, bracketAdapter{})
}

func (bracketAdapter) Grammar() Grammar { return GrammarBracket }

func (bracketAdapter) Detect(src *Source) bool {
	return src.Kind == SourceDelimited && hasMarker(src.Rows)
}

func (bracketAdapter) Sections(src *Source) ([]Section, []ValidationError) {
	raw, errs := Sectionize(src.Rows)

	sections := make([]Section, 0, len(raw))
	for _, sec := range raw {
		switch sec.Kind {
		case SectionProject:
			sec.Layout = project10Layout
		case SectionSegment:
			sec.Layout = bracketSegmentLayout
		case SectionLocation:
			sec.Layout = bracketLocationLayout
			if sec.GroupKey == "" {
				sec.Layout = bracketUnkeyedLocationLayout
			}
		}

		// The first row of every section is its header.
		var data []Row
		if len(sec.Rows) > 0 {
			data = dataRows(sec.Rows[1:], sec.Layout)
		}
		if len(data) == 0 {
			sec.Errors = append(sec.Errors, sectionError(sec.Name,
				fmt.Sprintf("%sセクションにヘッダーとデータ行が必要です", sec.Name)))
		}
		sec.Rows = data
		sections = append(sections, sec)
	}
	return sections, errs
}
