package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr(f float64) *float64 { return &f }

// ----------------------------------------------------------------------------
// buildLocation Tests
// ----------------------------------------------------------------------------

func TestBuildLocation(t *testing.T) {
	keyed := &Section{
		Kind: SectionLocation, Name: "[LOCATION:東京エリア]", GroupKey: "東京エリア",
		Category: CategoryTargeting, Layout: bracketLocationLayout,
	}
	unkeyed := &Section{
		Kind: SectionLocation, Name: "[LOCATION]",
		Category: CategoryTargeting, Layout: bracketUnkeyedLocationLayout,
	}
	visit := &Section{
		Kind: SectionLocation, Name: "④来店計測地点リスト",
		Category: CategoryVisitMeasurement, Layout: visitLocationLayout,
	}

	tests := []struct {
		name      string
		section   *Section
		cells     []string
		want      *Location
		wantCodes []string
	}{
		{
			name:    "address and coordinates",
			section: keyed,
			cells:   []string{"東京駅", "東京都千代田区丸の内1丁目", "35.681236", "139.767125"},
			want: &Location{
				Name: "東京駅", Address: "東京都千代田区丸の内1丁目",
				Latitude: ptr(35.681236), Longitude: ptr(139.767125),
				SegmentName: "東京エリア", Category: CategoryTargeting, Row: 4,
			},
			wantCodes: []string{},
		},
		{
			name:    "address only",
			section: keyed,
			cells:   []string{"新宿駅", "東京都新宿区"},
			want: &Location{
				Name: "新宿駅", Address: "東京都新宿区",
				SegmentName: "東京エリア", Category: CategoryTargeting, Row: 4,
			},
			wantCodes: []string{},
		},
		{
			name:    "segment taken from row",
			section: unkeyed,
			cells:   []string{"大阪エリア", "大阪駅", "", "34.702485", "135.495951"},
			want: &Location{
				Name: "大阪駅", Latitude: ptr(34.702485), Longitude: ptr(135.495951),
				SegmentName: "大阪エリア", Category: CategoryTargeting, Row: 4,
			},
			wantCodes: []string{},
		},
		{
			name:    "visit measurement group",
			section: visit,
			cells:   []string{"店舗A", "来店グループ1", "東京都港区"},
			want: &Location{
				Name: "店舗A", Address: "東京都港区", GroupName: "来店グループ1",
				Category: CategoryVisitMeasurement, Row: 4,
			},
			wantCodes: []string{},
		},
		{
			name:    "latitude out of range keeps the address",
			section: keyed,
			cells:   []string{"東京駅", "東京都千代田区", "95", "139.767125"},
			want: &Location{
				Name: "東京駅", Address: "東京都千代田区", Longitude: ptr(139.767125),
				SegmentName: "東京エリア", Category: CategoryTargeting, Row: 4,
			},
			wantCodes: []string{CodeOutOfRange},
		},
		{
			name:      "latitude out of range without address",
			section:   keyed,
			cells:     []string{"東京駅", "", "95", "139.767125"},
			want:      nil,
			wantCodes: []string{CodeOutOfRange},
		},
		{
			name:      "latitude without longitude",
			section:   keyed,
			cells:     []string{"東京駅", "", "35.68", ""},
			want:      nil,
			wantCodes: []string{CodeUnpaired},
		},
		{
			name:      "neither address nor coordinates",
			section:   keyed,
			cells:     []string{"東京駅"},
			want:      nil,
			wantCodes: []string{CodeRequired},
		},
		{
			name:      "missing name",
			section:   keyed,
			cells:     []string{"", "東京都千代田区"},
			want:      nil,
			wantCodes: []string{CodeRequired},
		},
		{
			name:      "coordinate text",
			section:   keyed,
			cells:     []string{"東京駅", "東京都千代田区", "北緯35度", "東経139度"},
			want:      &Location{Name: "東京駅", Address: "東京都千代田区", SegmentName: "東京エリア", Category: CategoryTargeting, Row: 4},
			wantCodes: []string{CodeInvalidNumber, CodeInvalidNumber},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := buildLocation(tt.section, Row{Number: 4, Cells: tt.cells})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("location mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCodes, errorCodes(errs)); diff != "" {
				t.Errorf("error codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildLocation_NameTooLong(t *testing.T) {
	sec := &Section{Kind: SectionLocation, Name: "[LOCATION:A]", GroupKey: "A", Category: CategoryTargeting, Layout: bracketLocationLayout}
	name := strings.Repeat("駅", MaxNameLength+1)

	_, errs := buildLocation(sec, Row{Number: 2, Cells: []string{name, "東京都"}})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Code != CodeTooLong {
		t.Errorf("code = %q, want %q", errs[0].Code, CodeTooLong)
	}
	if errs[0].Field != FieldPOIName.Label() {
		t.Errorf("field = %q, want %q", errs[0].Field, FieldPOIName.Label())
	}
}

// ----------------------------------------------------------------------------
// resolveLocations Tests
// ----------------------------------------------------------------------------

func TestResolveLocations(t *testing.T) {
	segments := []Segment{
		{Name: "東京エリア"},
		{Name: "ＯＳＡＫＡ"},
		{Name: "東京エリア"},
	}
	built := []builtLocation{
		{section: "[LOCATION:東京エリア]", location: Location{Name: "a", SegmentName: "東京エリア", Category: CategoryTargeting, Row: 2}},
		{section: "[LOCATION]", location: Location{Name: "b", SegmentName: "OSAKA", Category: CategoryTargeting, Row: 3}},
		{section: "[LOCATION]", location: Location{Name: "c", SegmentName: "名古屋", Category: CategoryTargeting, Row: 4}},
		{section: "[LOCATION]", location: Location{Name: "d", Category: CategoryTargeting, Row: 5}},
		{section: "来店計測", location: Location{Name: "e", GroupName: "G1", Category: CategoryVisitMeasurement, Row: 6}},
		{section: "来店計測", location: Location{Name: "f", Category: CategoryVisitMeasurement, Row: 7}},
	}

	placed, errs := resolveLocations(segments, built)

	gotPlaced := make(map[string]int)
	for _, p := range placed {
		gotPlaced[p.Location.Name] = p.SegmentIndex
	}
	wantPlaced := map[string]int{"a": 0, "b": 1, "e": -1}
	if diff := cmp.Diff(wantPlaced, gotPlaced); diff != "" {
		t.Errorf("placement mismatch (-want +got):\n%s", diff)
	}

	wantErrs := []ValidationError{
		{Section: "[LOCATION]", Row: 4, Field: "セグメント名", Message: "セグメント「名古屋」が見つかりません", Value: "名古屋", Code: CodeUnknownSegment, Severity: SeverityError},
		{Section: "[LOCATION]", Row: 5, Field: "セグメント名", Message: "セグメント名が指定されていません", Code: CodeMissingSegment, Severity: SeverityError},
		{Section: "来店計測", Row: 7, Field: "グループ名", Message: "来店計測地点にはグループ名が必要です", Code: CodeMissingGroup, Severity: SeverityError},
	}
	if diff := cmp.Diff(wantErrs, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}
