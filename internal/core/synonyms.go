package core

import (
	"strconv"
	"strings"
)

// Canonical codes.
const (
	MediaUniverse = "universe"
	MediaTVerSP   = "tver_sp"
	MediaTVerCTV  = "tver_ctv"

	AttributeDetector          = "detector"
	AttributeResident          = "resident"
	AttributeWorker            = "worker"
	AttributeResidentAndWorker = "resident_and_worker"

	PeriodCustom      = "custom"
	PeriodThreeMonths = "3month"
	PeriodDefault     = "1month"

	// LockedDetectionCount is the detection count forced for non-detector audiences.
	LockedDetectionCount = 1
)

// Synonym tables are keyed by the folded, lower-cased label (see synonymKey)
// and are never modified after package initialization.
var (
	mediaSynonyms = map[string][]string{
		"universe":             {MediaUniverse},
		"tver(sp)":             {MediaTVerSP},
		"tver(スマホ)":           {MediaTVerSP},
		"tver_sp":              {MediaTVerSP},
		"tver(ctv)":            {MediaTVerCTV},
		"tver(テレビ)":           {MediaTVerCTV},
		"tver_ctv":             {MediaTVerCTV},
		"universeまたはtver(sp)": {MediaUniverse, MediaTVerSP},
	}

	attributeSynonyms = map[string]string{
		"検知者":                 AttributeDetector,
		"検知された人":              AttributeDetector,
		"detector":            AttributeDetector,
		"居住者":                 AttributeResident,
		"resident":            AttributeResident,
		"勤務者":                 AttributeWorker,
		"worker":              AttributeWorker,
		"居住者&勤務者":             AttributeResidentAndWorker,
		"居住者・勤務者":             AttributeResidentAndWorker,
		"resident_and_worker": AttributeResidentAndWorker,
	}

	periodSynonyms = buildPeriodSynonyms()

	detectionCountSynonyms = map[string]int{
		"1回以上": 1,
		"2回以上": 2,
		"3回以上": 3,
		"4回以上": 4,
		"5回以上": 5,
	}

	stayTimeSynonyms = buildStayTimeSynonyms()
)

// mediaLabels are the display names used in error messages.
var mediaLabels = map[string]string{
	MediaUniverse: "UNIVERSE",
	MediaTVerSP:   "TVer(SP)",
	MediaTVerCTV:  "TVer(CTV)",
}

func buildPeriodSynonyms() map[string]string {
	m := map[string]string{
		"期間指定":   PeriodCustom,
		PeriodCustom: PeriodCustom,
	}
	for n := 1; n <= 6; n++ {
		code := strconv.Itoa(n) + "month"
		m[code] = code
		for _, unit := range []string{"ヶ月", "ヵ月", "カ月", "か月"} {
			label := strconv.Itoa(n) + unit
			m[label] = code
			m["直近"+label] = code
		}
	}
	return m
}

func buildStayTimeSynonyms() map[string]string {
	m := make(map[string]string)
	for _, n := range []int{3, 5, 10, 15, 30} {
		code := strconv.Itoa(n) + "min"
		m[code] = code
		m[strconv.Itoa(n)+"分"] = code
		m[strconv.Itoa(n)+"分以上"] = code
	}
	return m
}

// synonymKey folds width, drops spaces and lower-cases a label.
func synonymKey(raw string) string {
	s := foldWidth(raw)
	s = strings.Join(strings.Fields(s), "")
	return strings.ToLower(s)
}

// LookupMedia returns the codes for one media label.
func LookupMedia(label string) ([]string, bool) {
	codes, ok := mediaSynonyms[synonymKey(label)]
	return codes, ok
}

// LookupAttribute returns the audience attribute code for a label.
func LookupAttribute(label string) (string, bool) {
	code, ok := attributeSynonyms[synonymKey(label)]
	return code, ok
}

// LookupPeriod returns the extraction period code for a label.
func LookupPeriod(label string) (string, bool) {
	code, ok := periodSynonyms[synonymKey(label)]
	return code, ok
}

// LookupStayTime returns the stay time code for a label.
func LookupStayTime(label string) (string, bool) {
	code, ok := stayTimeSynonyms[synonymKey(label)]
	return code, ok
}

// MediaLabel returns the display name of a media code.
func MediaLabel(code string) string {
	if l, ok := mediaLabels[code]; ok {
		return l
	}
	return code
}

// isLockedAttribute reports whether the attribute fixes the period to 3 months.
func isLockedAttribute(code string) bool {
	switch code {
	case AttributeResident, AttributeWorker, AttributeResidentAndWorker:
		return true
	}
	return false
}
