package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func errorCodes(errs []ValidationError) []string {
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	return codes
}

// ----------------------------------------------------------------------------
// buildSegment Tests
// ----------------------------------------------------------------------------

func TestBuildSegment(t *testing.T) {
	bracket := &Section{Kind: SectionSegment, Name: "[SEGMENT]", Layout: bracketSegmentLayout}
	sheet := &Section{Kind: SectionSegment, Name: "3.セグメント設定", Layout: sheetSegmentLayout}

	tests := []struct {
		name      string
		section   *Section
		cells     []string
		want      *Segment
		wantCodes []string
	}{
		{
			name:    "bracket defaults",
			section: bracket,
			cells:   []string{"", "UNIVERSE"},
			want: &Segment{
				Name: "セグメント3", Media: []string{MediaUniverse},
				Period: PeriodDefault, Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{},
		},
		{
			name:    "bracket full row",
			section: bracket,
			cells:   []string{"東京エリア", "TVer(SP)", "1000m", "直近2ヶ月", "検知者", "3回以上", "9:00", "18:00", "10分以上", "acc-1"},
			want: &Segment{
				Name: "東京エリア", Media: []string{MediaTVerSP}, Radius: "1000m", Period: "2month",
				Attribute: AttributeDetector, DetectionCount: 3, TimeStart: "09:00", TimeEnd: "18:00",
				StayTime: "10min", AdsAccountID: "acc-1", Row: 5,
			},
			wantCodes: []string{},
		},
		{
			name:    "bracket custom range in period cell",
			section: bracket,
			cells:   []string{"S", "UNIVERSE", "", "2024-01-01~2024-01-31"},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse}, Period: PeriodCustom,
				CustomStart: "2024-01-01", CustomEnd: "2024-01-31",
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{},
		},
		{
			name:    "sheet custom period from columns",
			section: sheet,
			cells:   []string{"S", "UNIVERSE", "500", "期間指定", "2024/3/1", "45382", "検知者", "1回以上"},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse}, Radius: "500m", Period: PeriodCustom,
				CustomStart: "2024-03-01", CustomEnd: "2024-03-31",
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{},
		},
		{
			name:    "sheet custom period without dates",
			section: sheet,
			cells:   []string{"S", "UNIVERSE", "500m", "期間指定", "", "", "検知者", "1回以上"},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse}, Radius: "500m", Period: PeriodCustom,
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{CodeUnpaired},
		},
		{
			name:    "sheet custom period reversed",
			section: sheet,
			cells:   []string{"S", "UNIVERSE", "500m", "期間指定", "2024-02-01", "2024-01-01", "検知者", "1回以上"},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse}, Radius: "500m", Period: PeriodCustom,
				CustomStart: "2024-02-01", CustomEnd: "2024-01-01",
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{CodeOrder},
		},
		{
			name:    "sheet required columns missing",
			section: sheet,
			cells:   []string{"S", "UNIVERSE", "", "", "", "", "検知者", ""},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse}, Attribute: AttributeDetector, Row: 5,
			},
			wantCodes: []string{CodeRequired, CodeRequired, CodeRequired},
		},
		{
			name:    "unpaired time window",
			section: bracket,
			cells:   []string{"S", "UNIVERSE", "", "", "", "", "9:00", ""},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse}, Period: PeriodDefault,
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{CodeUnpaired},
		},
		{
			name:    "sibling fields keep validating",
			section: bracket,
			cells:   []string{"S", "UNIVERSE", "abc", "直近9ヶ月", "", "", "", "", "20分"},
			want: &Segment{
				Name: "S", Media: []string{MediaUniverse},
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{CodeInvalidFormat, CodeUnmapped, CodeUnmapped},
		},
		{
			name:      "no media drops the row",
			section:   bracket,
			cells:     []string{"S", "", "500m"},
			want:      nil,
			wantCodes: []string{CodeRequired},
		},
		{
			name:      "unknown media drops the row",
			section:   bracket,
			cells:     []string{"S", "LINE"},
			want:      nil,
			wantCodes: []string{CodeUnmapped},
		},
		{
			name:    "ctv mixed keeps the segment",
			section: bracket,
			cells:   []string{"S", "TVer(CTV)、UNIVERSE"},
			want: &Segment{
				Name: "S", Media: []string{MediaTVerCTV, MediaUniverse}, Period: PeriodDefault,
				Attribute: AttributeDetector, DetectionCount: 1, Row: 5,
			},
			wantCodes: []string{CodeCTVMixedRow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := buildSegment(tt.section, Row{Number: 5, Cells: tt.cells}, 3)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("segment mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCodes, errorCodes(errs)); diff != "" {
				t.Errorf("error codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Attribute Lock Tests
// ----------------------------------------------------------------------------

func TestBuildSegment_AttributeLock(t *testing.T) {
	bracket := &Section{Kind: SectionSegment, Name: "[SEGMENT]", Layout: bracketSegmentLayout}
	sheet := &Section{Kind: SectionSegment, Name: "3.セグメント設定", Layout: sheetSegmentLayout}

	tests := []struct {
		name    string
		section *Section
		cells   []string
		want    string
	}{
		{
			name:    "resident overrides every detector field",
			section: bracket,
			cells:   []string{"S", "UNIVERSE", "500m", "直近1ヶ月", "居住者", "3回以上", "9:00", "18:00", "10分"},
			want:    AttributeResident,
		},
		{
			name:    "worker ignores invalid locked fields",
			section: bracket,
			cells:   []string{"S", "UNIVERSE", "500m", "not a period", "勤務者", "many", "25:00", "", "forever"},
			want:    AttributeWorker,
		},
		{
			name:    "sheet resident needs no period or count",
			section: sheet,
			cells:   []string{"S", "UNIVERSE", "500m", "", "2024-01-01", "2023-01-01", "居住者&勤務者", ""},
			want:    AttributeResidentAndWorker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := buildSegment(tt.section, Row{Number: 2, Cells: tt.cells}, 1)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if got == nil {
				t.Fatal("segment is nil")
			}

			want := Segment{
				Name:           "S",
				Media:          []string{MediaUniverse},
				Radius:         "500m",
				Period:         PeriodThreeMonths,
				Attribute:      tt.want,
				DetectionCount: LockedDetectionCount,
				Row:            2,
			}
			if diff := cmp.Diff(want, *got); diff != "" {
				t.Errorf("segment mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
