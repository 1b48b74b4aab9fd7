package core

import (
	"fmt"
	"strings"
)

// nameKey is the comparison key for segment and group names: trimmed and
// width-folded, so "ＡＢＣ" and "ABC" refer to the same segment.
func nameKey(name string) string {
	return foldWidth(strings.TrimSpace(name))
}

type builtLocation struct {
	section  string
	location Location
}

// resolveLocations links every targeting location to the first segment of
// the same name and checks that visit-measurement locations name a group.
// Unresolved locations are dropped with one error each.
func resolveLocations(segments []Segment, built []builtLocation) ([]PlacedLocation, []ValidationError) {
	index := make(map[string]int, len(segments))
	for i, s := range segments {
		key := nameKey(s.Name)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	placed := make([]PlacedLocation, 0, len(built))
	var errs []ValidationError

	for _, b := range built {
		loc := b.location
		refErr := func(f Field, value, code, message string) {
			errs = append(errs, ValidationError{
				Section:  b.section,
				Row:      loc.Row,
				Field:    f.Label(),
				Message:  message,
				Value:    value,
				Code:     code,
				Severity: SeverityError,
			})
		}

		if loc.Category == CategoryVisitMeasurement {
			if strings.TrimSpace(loc.GroupName) == "" {
				refErr(FieldGroupName, "", CodeMissingGroup, "来店計測地点にはグループ名が必要です")
				continue
			}
			placed = append(placed, PlacedLocation{Location: loc, SegmentIndex: -1})
			continue
		}

		if strings.TrimSpace(loc.SegmentName) == "" {
			refErr(FieldSegmentRef, "", CodeMissingSegment, "セグメント名が指定されていません")
			continue
		}
		idx, ok := index[nameKey(loc.SegmentName)]
		if !ok {
			refErr(FieldSegmentRef, loc.SegmentName, CodeUnknownSegment,
				fmt.Sprintf("セグメント「%s」が見つかりません", loc.SegmentName))
			continue
		}
		placed = append(placed, PlacedLocation{Location: loc, SegmentIndex: idx})
	}

	return placed, errs
}
