package core

import (
	"fmt"
	"strings"
)

// ruleSection labels document-level findings.
const ruleSection = "ビジネスルール"

// keepFirst is the single-project policy: the first candidate wins and the
// rest are returned for reporting.
func keepFirst[T any](candidates []T) (first T, rest []T, ok bool) {
	if len(candidates) == 0 {
		return first, nil, false
	}
	return candidates[0], candidates[1:], true
}

// reportDuplicates is the segment-name policy: every name that occurs more
// than once, in order of first occurrence. Nothing is removed.
func reportDuplicates(names []string) []string {
	counts := make(map[string]int, len(names))
	var order []string
	for _, n := range names {
		key := nameKey(n)
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	var dups []string
	for _, key := range order {
		if counts[key] > 1 {
			dups = append(dups, key)
		}
	}
	return dups
}

// checkDuplicateNames emits one document-level error listing duplicate names.
func checkDuplicateNames(segments []Segment) []ValidationError {
	names := make([]string, len(segments))
	for i, s := range segments {
		names[i] = s.Name
	}
	dups := reportDuplicates(names)
	if len(dups) == 0 {
		return nil
	}
	return []ValidationError{documentError(CodeDuplicateNames,
		"セグメント名が重複しています: "+strings.Join(dups, ", "))}
}

// checkCTVExclusivity applies the media exclusivity rule across the whole
// document: a segment delivering to TVer(CTV) may not coexist with another
// segment delivering to any other medium.
func checkCTVExclusivity(segments []Segment) []ValidationError {
	for i, s := range segments {
		if !s.HasMedia(MediaTVerCTV) {
			continue
		}
		for j, other := range segments {
			if i != j && hasNonCTV(other) {
				return []ValidationError{documentError(CodeCTVMixedDocument,
					"TVer(CTV)と他の配信先は同じ案件内で混在できません")}
			}
		}
	}
	return nil
}

func hasNonCTV(s Segment) bool {
	for _, m := range s.Media {
		if m != MediaTVerCTV {
			return true
		}
	}
	return false
}

// checkLockedPeriods re-checks that resident and worker audiences carry the
// 3-month period. sections holds the section name of each segment.
func checkLockedPeriods(segments []Segment, sections []string) []ValidationError {
	var errs []ValidationError
	for i, s := range segments {
		if !isLockedAttribute(s.Attribute) || s.Period == PeriodThreeMonths {
			continue
		}
		errs = append(errs, ValidationError{
			Section:  sections[i],
			Row:      s.Row,
			Field:    FieldPeriod.Label(),
			Message:  "居住者・勤務者の場合、抽出期間は「直近3ヶ月」固定です",
			Value:    s.Period,
			Code:     CodeLockedPeriod,
			Severity: SeverityError,
		})
	}
	return errs
}

// extraProjectWarning reports the first superfluous project row.
func extraProjectWarning(section string, row Row, total int) ValidationError {
	return ValidationError{
		Section:  section,
		Row:      row.Number,
		Message:  fmt.Sprintf("案件は1件のみ登録できます。%d件の案件行のうち先頭の1件のみ取り込みました", total),
		Value:    row.Cell(0),
		Code:     CodeMultipleProjects,
		Severity: SeverityWarning,
	}
}
