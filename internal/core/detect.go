package core

import (
	"regexp"
	"strings"
)

// Normalized sheet names (see NormalizeSheetName).
const (
	sheetProject       = "案件情報"
	sheetSegment       = "セグメント設定"
	sheetLocation      = "地点リスト"
	sheetMerged        = "案件・セグメント設定"
	sheetCombined      = "セグメント・地点設定"
	sheetSplitCombined = "セグメント・TG地点設定"
	sheetVisit         = "来店計測地点リスト"
)

// markerScanRows bounds how far into a text file the bracket detector looks.
const markerScanRows = 10

// sheetPrefix matches numbering such as "2.", "(3)", "4_" or "②".
var sheetPrefix = regexp.MustCompile(`^(?:[\x{2460}-\x{2473}]|\(?\d+\)?[.:_\-)]?)`)

// NormalizeSheetName folds width, drops whitespace and strips the numbering
// prefix so "2.案件情報", "②案件情報" and "２．案件情報" compare equal.
func NormalizeSheetName(name string) string {
	s := foldWidth(name)
	s = strings.Join(strings.Fields(s), "")
	s = sheetPrefix.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

func (w *Workbook) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := w.Sheet(k); !ok {
			return false
		}
	}
	return true
}

// hasMarker reports whether one of the first non-comment rows is a marker.
func hasMarker(rows []Row) bool {
	seen := 0
	for _, r := range rows {
		if isSkippable(r) {
			continue
		}
		if _, _, ok := marker(r.Cell(0)); ok {
			return true
		}
		seen++
		if seen >= markerScanRows {
			return false
		}
	}
	return false
}
