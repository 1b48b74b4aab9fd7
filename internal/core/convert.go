package core

// convert.go normalizes raw cell text into canonical field values.
//
// These functions handle the messy reality of hand-edited sheets:
//   - Full-width digits, letters and punctuation (１２３, ＵＮＩＶＥＲＳＥ, ：)
//   - Dates typed as text or stored as spreadsheet serial numbers
//   - Times stored as a fraction of a day
//   - Excel formula prefixes (="value") and text prefixes (')
//
// Every Normalize* function returns a *FieldError describing the first
// problem, leaving the caller to attach section, row and field.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

// FieldError is one cell rejected by a normalizer.
type FieldError struct {
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func fieldErr(code, format string, args ...any) *FieldError {
	return &FieldError{Code: code, Message: fmt.Sprintf(format, args...)}
}

const (
	MaxRadius     = 10000
	MaxNameLength = 100

	// maxDateSerial is 9999-12-31 in the 1900 date system.
	maxDateSerial = 2958465
)

var (
	radiusRegex   = regexp.MustCompile(`^\d+$`)
	timeRegex     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
	mediaSplitter = strings.NewReplacer("、", ",", "，", ",")

	dateLayouts = []string{
		"2006-01-02", "2006-1-2", "2006/1/2", "2006.1.2",
		"2006年1月2日", "20060102",
		"2006-01-02 15:04:05", "2006/1/2 15:04:05", "2006/1/2 15:04",
		time.RFC3339,
	}
)

// foldWidth maps full-width ASCII variants and half-width katakana to their
// canonical widths.
func foldWidth(s string) string {
	return width.Fold.String(s)
}

// CleanCell trims whitespace and removes spreadsheet artifacts:
// the formula wrapper ="..." and the leading apostrophe text marker.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "'")

	return strings.TrimSpace(s)
}

// NormalizeMedia splits a media cell on commas (ASCII, full-width and
// ideographic), maps each label to canonical codes and deduplicates the
// result in order. CTV together with any other code is rejected.
func NormalizeMedia(raw string) ([]string, *FieldError) {
	var codes []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(mediaSplitter.Replace(foldWidth(raw)), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mapped, ok := LookupMedia(part)
		if !ok {
			return nil, fieldErr(CodeUnmapped,
				"無効な配信先です: %s（UNIVERSE / TVer(SP) / TVer(CTV) のいずれかで指定してください）", part)
		}
		for _, c := range mapped {
			if !seen[c] {
				seen[c] = true
				codes = append(codes, c)
			}
		}
	}

	if len(codes) == 0 {
		return nil, fieldErr(CodeRequired, "配信先は必須です")
	}
	if seen[MediaTVerCTV] && len(codes) > 1 {
		return codes, fieldErr(CodeCTVMixedRow, "TVer(CTV)は他の配信先と併用できません")
	}
	return codes, nil
}

// NormalizeRadius accepts "500" or "500m" and returns "500m".
func NormalizeRadius(raw string) (string, *FieldError) {
	s := strings.ToLower(strings.Join(strings.Fields(foldWidth(raw)), ""))
	s = strings.TrimSuffix(s, "m")

	if !radiusRegex.MatchString(s) {
		return "", fieldErr(CodeInvalidFormat, "配信範囲は「500m」のような形式で入力してください")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > MaxRadius {
		return "", fieldErr(CodeOutOfRange, "配信範囲は0〜%dmで指定してください", MaxRadius)
	}
	return strconv.Itoa(n) + "m", nil
}

// NormalizePeriod returns the period code. A "YYYY-MM-DD~YYYY-MM-DD" range
// yields the custom code plus both dates.
func NormalizePeriod(raw string) (code, start, end string, ferr *FieldError) {
	s := foldWidth(raw)
	for _, sep := range []string{"~", "〜", "～"} {
		if before, after, ok := strings.Cut(s, sep); ok {
			start, ferr = NormalizeDate(before)
			if ferr != nil {
				return "", "", "", ferr
			}
			end, ferr = NormalizeDate(after)
			if ferr != nil {
				return "", "", "", ferr
			}
			return PeriodCustom, start, end, nil
		}
	}

	code, ok := LookupPeriod(s)
	if !ok {
		return "", "", "", fieldErr(CodeUnmapped, "無効な抽出期間です: %s", raw)
	}
	return code, "", "", nil
}

// NormalizeAttribute returns the audience attribute code.
func NormalizeAttribute(raw string) (string, *FieldError) {
	code, ok := LookupAttribute(raw)
	if !ok {
		return "", fieldErr(CodeUnmapped, "無効な対象者です: %s", raw)
	}
	return code, nil
}

// NormalizeDetectionCount accepts a label such as "3回以上" or a positive integer.
func NormalizeDetectionCount(raw string) (int, *FieldError) {
	key := synonymKey(raw)
	if n, ok := detectionCountSynonyms[key]; ok {
		return n, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(key, "回"))
	if err != nil || n < 1 {
		return 0, fieldErr(CodeUnmapped, "無効な検知回数です: %s", raw)
	}
	return n, nil
}

// NormalizeStayTime returns the stay time code.
func NormalizeStayTime(raw string) (string, *FieldError) {
	code, ok := LookupStayTime(raw)
	if !ok {
		return "", fieldErr(CodeUnmapped, "無効な滞在時間です: %s", raw)
	}
	return code, nil
}

// NormalizeDate accepts a text date or a spreadsheet date serial and returns
// an ISO calendar date.
func NormalizeDate(raw string) (string, *FieldError) {
	s := strings.TrimSpace(foldWidth(raw))

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial <= maxDateSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.Format(time.DateOnly), nil
		}
	}

	return "", fieldErr(CodeInvalidDate, "日付の形式が正しくありません（YYYY-MM-DD）: %s", raw)
}

// NormalizeTime accepts "H:MM", "HH:MM[:SS]" or a day fraction and returns "HH:MM".
func NormalizeTime(raw string) (string, *FieldError) {
	s := strings.TrimSpace(foldWidth(raw))

	if m := timeRegex.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h <= 23 && mm <= 59 {
			return fmt.Sprintf("%02d:%02d", h, mm), nil
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f < 1 {
		total := int(math.Round(f * 24 * 60))
		if total < 24*60 {
			return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
		}
	}

	return "", fieldErr(CodeInvalidFormat, "時刻の形式が正しくありません（HH:MM）: %s", raw)
}

// NormalizeLatitude parses a latitude in [-90, 90].
func NormalizeLatitude(raw string) (float64, *FieldError) {
	return normalizeCoordinate(raw, 90, "緯度")
}

// NormalizeLongitude parses a longitude in [-180, 180].
func NormalizeLongitude(raw string) (float64, *FieldError) {
	return normalizeCoordinate(raw, 180, "経度")
}

func normalizeCoordinate(raw string, limit float64, label string) (float64, *FieldError) {
	f, err := strconv.ParseFloat(strings.TrimSpace(foldWidth(raw)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fieldErr(CodeInvalidNumber, "%sは数値で入力してください", label)
	}
	if f < -limit || f > limit {
		return 0, fieldErr(CodeOutOfRange, "%sは-%g〜%gの範囲で入力してください", label, limit, limit)
	}
	return f, nil
}
