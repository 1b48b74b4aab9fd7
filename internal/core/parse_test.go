package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/japanese"
)

const projectHeader = "advertiser_name,agency_name,appeal_point,universe_service_id,universe_service_name,delivery_start_date,delivery_end_date,person_in_charge,sub_person_in_charge,remarks"
const segmentHeader = "segment_name,media_id,designated_radius,extraction_period,attribute,detection_count,detection_time_start,detection_time_end,stay_time,ads_account_id"
const locationHeader = "poi_name,address,latitude,longitude"

func csvLines(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func codesOf(r *ParseResult) []string {
	return errorCodes(r.Errors)
}

// ----------------------------------------------------------------------------
// Bracket Grammar Tests
// ----------------------------------------------------------------------------

func TestParse_Bracket(t *testing.T) {
	data := csvLines(
		"[PROJECT]",
		projectHeader,
		"株式会社A,代理店B,新商品の認知拡大,,,2024-01-01,2024-03-31,,,",
		"[SEGMENT]",
		segmentHeader,
		"東京エリア,UNIVERSE,500m,直近1ヶ月,検知者,1回以上,,,,",
		"[LOCATION:東京エリア]",
		locationHeader,
		"東京駅,東京都千代田区丸の内1丁目,35.681236,139.767125",
	)

	got := Parse("import.csv", data)

	want := &ParseResult{
		Grammar: GrammarBracket,
		Project: &Project{
			AdvertiserName: "株式会社A",
			AgencyName:     "代理店B",
			Appeal:         "新商品の認知拡大",
			DeliveryStart:  "2024-01-01",
			DeliveryEnd:    "2024-03-31",
			Owner:          DefaultOwner,
			Row:            3,
		},
		Segments: []Segment{{
			Name:           "東京エリア",
			Media:          []string{MediaUniverse},
			Radius:         "500m",
			Period:         "1month",
			Attribute:      AttributeDetector,
			DetectionCount: 1,
			Row:            6,
		}},
		Locations: []PlacedLocation{{
			Location: Location{
				Name:        "東京駅",
				Address:     "東京都千代田区丸の内1丁目",
				Latitude:    ptr(35.681236),
				Longitude:   ptr(139.767125),
				SegmentName: "東京エリア",
				Category:    CategoryTargeting,
				Row:         9,
			},
			SegmentIndex: 0,
		}},
		Errors: []ValidationError{},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Idempotent(t *testing.T) {
	data := csvLines(
		"[PROJECT]",
		projectHeader,
		"株式会社A,代理店B,訴求,,,2024-01-01,2023-12-31,,,",
		"[SEGMENT]",
		segmentHeader,
		"S1,TVer(CTV)、UNIVERSE,abc,,居住者,,,,,",
		"S1,LINE,,,,,,,,",
		"[LOCATION:S1]",
		locationHeader,
		"地点,,95,200",
		"[LOCATION:S9]",
		locationHeader,
		"地点2,住所,,",
	)

	first := Parse("import.csv", data)
	second := Parse("import.csv", data)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parse is not deterministic (-first +second):\n%s", diff)
	}
	if len(first.Errors) == 0 {
		t.Fatal("expected errors for an invalid document")
	}
}

func TestParse_AllErrorsReported(t *testing.T) {
	data := csvLines(
		"[PROJECT]",
		projectHeader,
		"株式会社A,,訴求,,,2024-01-01,2024-13-01,,,",
		"[SEGMENT]",
		segmentHeader,
		"S1,LINE,abc,,,,,,,",
		"S2,UNIVERSE,,直近9ヶ月,,,9:00,,,",
		"[LOCATION:S2]",
		locationHeader,
		"地点A,,95,139",
		"地点B,東京都,,",
		"[LOCATION:S1]",
		locationHeader,
		"地点C,東京都,,",
	)

	got := Parse("import.csv", data)

	want := []string{
		// project
		CodeInvalidDate,
		// segments, in row order
		CodeUnmapped, CodeInvalidFormat,
		CodeUnmapped, CodeUnpaired,
		// locations, then references
		CodeOutOfRange,
		CodeUnknownSegment,
	}
	if diff := cmp.Diff(want, codesOf(got)); diff != "" {
		t.Errorf("error codes mismatch (-want +got):\n%s", diff)
	}

	if got.Project == nil {
		t.Fatal("project with a bad date should still be returned")
	}
	if got.Project.DeliveryEnd != "" {
		t.Errorf("DeliveryEnd = %q, want empty after rejection", got.Project.DeliveryEnd)
	}
	if len(got.Segments) != 1 || got.Segments[0].Name != "S2" {
		t.Fatalf("segments = %+v, want only S2", got.Segments)
	}
	if len(got.Locations) != 1 || got.Locations[0].Location.Name != "地点B" {
		t.Errorf("locations = %+v, want only 地点B", got.Locations)
	}
}

func TestParse_ErrorOrder(t *testing.T) {
	data := csvLines(
		"[LOCATION:S1]",
		locationHeader,
		"地点,,,",
		"[SEGMENT]",
		segmentHeader,
		"S1,LINE,,,,,,,,",
		"[PROJECT]",
		projectHeader,
		"株式会社A,,,,,2024-01-01,2024-01-31,,,",
	)

	got := Parse("import.csv", data)

	var sections []string
	for _, e := range got.Errors {
		sections = append(sections, e.Section)
	}
	want := []string{"[PROJECT]", "[SEGMENT]", "[LOCATION:S1]"}
	if diff := cmp.Diff(want, sections); diff != "" {
		t.Errorf("error order mismatch (-want +got):\n%s", diff)
	}
	if got.Project != nil {
		t.Errorf("Project = %+v, want nil when a required field is missing", got.Project)
	}
}

func TestParse_ProjectRules(t *testing.T) {
	t.Run("no project section", func(t *testing.T) {
		got := Parse("import.csv", csvLines(
			"[SEGMENT]",
			segmentHeader,
			"S1,UNIVERSE,,,,,,,,",
		))
		if got.Project != nil {
			t.Errorf("Project = %+v, want nil", got.Project)
		}
		if diff := cmp.Diff([]string{CodeNoProject}, codesOf(got)); diff != "" {
			t.Errorf("error codes mismatch (-want +got):\n%s", diff)
		}
		if len(got.Segments) != 1 {
			t.Errorf("got %d segments, want 1", len(got.Segments))
		}
	})

	t.Run("several project rows keep the first", func(t *testing.T) {
		got := Parse("import.csv", csvLines(
			"[PROJECT]",
			projectHeader,
			"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
			"株式会社B,,訴求,,,not a date,,,,",
			"[PROJECT]",
			projectHeader,
			"株式会社C,,訴求,,,2024-01-01,2024-01-31,,,",
		))
		if got.Project == nil || got.Project.AdvertiserName != "株式会社A" {
			t.Fatalf("Project = %+v, want 株式会社A", got.Project)
		}
		if diff := cmp.Diff([]string{CodeMultipleProjects}, codesOf(got)); diff != "" {
			t.Errorf("error codes mismatch (-want +got):\n%s", diff)
		}
		if got.Errors[0].Severity != SeverityWarning || got.Errors[0].Row != 4 {
			t.Errorf("got %+v, want a warning on row 4", got.Errors[0])
		}
		if got.HasErrors() {
			t.Error("HasErrors() = true for warnings only")
		}
	})

	t.Run("owner defaults", func(t *testing.T) {
		p := NewParser(Options{DefaultOwner: "営業部"})
		got := p.Parse("import.csv", csvLines(
			"[PROJECT]",
			projectHeader,
			"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
		))
		if got.Project == nil || got.Project.Owner != "営業部" {
			t.Errorf("Project = %+v, want owner 営業部", got.Project)
		}
	})
}

func TestParse_SegmentRules(t *testing.T) {
	tests := []struct {
		name      string
		segments  []string
		wantCodes []string
	}{
		{
			name:      "duplicate names",
			segments:  []string{"S1,UNIVERSE,,,,,,,,", "Ｓ1,TVer(SP),,,,,,,,"},
			wantCodes: []string{CodeDuplicateNames},
		},
		{
			name:      "ctv across segments",
			segments:  []string{"S1,TVer(CTV),,,,,,,,", "S2,UNIVERSE,,,,,,,,"},
			wantCodes: []string{CodeCTVMixedDocument},
		},
		{
			name:      "ctv within one row",
			segments:  []string{"S1,TVer(CTV)、TVer(SP),,,,,,,,"},
			wantCodes: []string{CodeCTVMixedRow},
		},
		{
			name:      "locked audience",
			segments:  []string{"S1,UNIVERSE,,直近1ヶ月,居住者,5回以上,9:00,18:00,,"},
			wantCodes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{
				"[PROJECT]",
				projectHeader,
				"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
				"[SEGMENT]",
				segmentHeader,
			}
			got := Parse("import.csv", csvLines(append(lines, tt.segments...)...))
			if diff := cmp.Diff(tt.wantCodes, codesOf(got)); diff != "" {
				t.Errorf("error codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_LocationReferences(t *testing.T) {
	got := Parse("import.csv", csvLines(
		"[PROJECT]",
		projectHeader,
		"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
		"[SEGMENT]",
		segmentHeader,
		"ＡＢＣ,UNIVERSE,,,,,,,,",
		"DEF,UNIVERSE,,,,,,,,",
		"[LOCATION:ABC]",
		locationHeader,
		"地点1,東京都,,",
		"[LOCATION]",
		"segment_name,poi_name,address,latitude,longitude",
		"DEF,地点2,大阪府,,",
		"XYZ,地点3,京都府,,",
	))

	var indexes []int
	for _, l := range got.Locations {
		indexes = append(indexes, l.SegmentIndex)
	}
	if diff := cmp.Diff([]int{0, 1}, indexes); diff != "" {
		t.Errorf("segment indexes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{CodeUnknownSegment}, codesOf(got)); diff != "" {
		t.Errorf("error codes mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SectionFindings(t *testing.T) {
	got := Parse("import.csv", csvLines(
		"テンプレート v2",
		"[PROJECT]",
		projectHeader,
		"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
		"[SEGMENT]",
		segmentHeader,
		"サンプル,UNIVERSE,,,,,,,,",
	))

	if diff := cmp.Diff([]string{CodeOutsideSection, CodeSectionEmpty}, codesOf(got)); diff != "" {
		t.Errorf("error codes mismatch (-want +got):\n%s", diff)
	}
	if len(got.Segments) != 0 {
		t.Errorf("sample row produced segments: %+v", got.Segments)
	}
}

func TestParse_BracketDefaults(t *testing.T) {
	got := Parse("import.csv", csvLines(
		"[PROJECT]",
		projectHeader,
		"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
		"[SEGMENT]",
		segmentHeader,
		",UNIVERSE,,,,,,,,",
		",TVer(SP),,,,,,,,",
	))

	var names []string
	for _, s := range got.Segments {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"セグメント1", "セグメント2"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

// ----------------------------------------------------------------------------
// Fatal Outcome Tests
// ----------------------------------------------------------------------------

func TestParse_Fatal(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantCode string
	}{
		{
			name:     "no markers",
			filename: "import.csv",
			data:     csvLines("name,address", "東京駅,東京都"),
			wantCode: CodeNoLayout,
		},
		{
			name:     "legacy excel format",
			filename: "import.xls",
			data:     []byte{0xD0, 0xCF, 0x11, 0xE0},
			wantCode: CodeUnsupported,
		},
		{
			name:     "corrupt workbook",
			filename: "import.xlsx",
			data:     []byte("not a zip archive"),
			wantCode: CodeFileUnreadable,
		},
		{
			name:     "workbook without known sheets",
			filename: "import.xlsx",
			data:     buildWorkbook(t, sheetData{name: "Sheet2", rows: [][]any{{"a"}}}),
			wantCode: CodeNoLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.filename, tt.data)
			if !got.Fatal() {
				t.Fatalf("Fatal() = false, errors: %v", got.Errors)
			}
			if len(got.Errors) != 1 || got.Errors[0].Code != tt.wantCode {
				t.Errorf("errors = %v, want one %s", got.Errors, tt.wantCode)
			}
			if got.Project != nil || len(got.Segments) != 0 || len(got.Locations) != 0 {
				t.Errorf("fatal result carries entities: %+v", got)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Encoding Tests
// ----------------------------------------------------------------------------

func TestParse_TextEncodings(t *testing.T) {
	text := strings.Join([]string{
		"[PROJECT]",
		projectHeader,
		"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
	}, "\r\n")

	sjis, err := japanese.ShiftJIS.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "utf-8", data: []byte(text)},
		{name: "utf-8 with bom", data: append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{name: "shift_jis", data: []byte(sjis)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse("import.csv", tt.data)
			if got.Project == nil {
				t.Fatalf("no project parsed, errors: %v", got.Errors)
			}
			if got.Project.AdvertiserName != "株式会社A" {
				t.Errorf("AdvertiserName = %q, want %q", got.Project.AdvertiserName, "株式会社A")
			}
		})
	}
}

func TestParseReader(t *testing.T) {
	data := csvLines(
		"[PROJECT]",
		projectHeader,
		"株式会社A,,訴求,,,2024-01-01,2024-01-31,,,",
	)
	p := NewParser(Options{})
	if diff := cmp.Diff(p.Parse("a.csv", data), p.ParseReader("a.csv", bytes.NewReader(data))); diff != "" {
		t.Errorf("ParseReader differs from Parse (-parse +reader):\n%s", diff)
	}
}

func TestDetectGrammar(t *testing.T) {
	g, err := DetectGrammar("import.csv", csvLines("[PROJECT]", projectHeader))
	if err != nil {
		t.Fatalf("DetectGrammar() error: %v", err)
	}
	if g != GrammarBracket {
		t.Errorf("grammar = %q, want %q", g, GrammarBracket)
	}

	if _, err := DetectGrammar("import.csv", csvLines("a,b")); err == nil {
		t.Error("DetectGrammar() expected error for unrecognized text")
	}
}
