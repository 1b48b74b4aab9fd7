package core

import (
	"fmt"
	"strings"
)

// Grammar identifies one of the supported input layouts.
type Grammar string

const (
	GrammarSplit    Grammar = "split"    // v4: segment+TG location sheet and visit-measurement sheet
	GrammarCombined Grammar = "combined" // v3: segment+location sheet without visit sheet
	GrammarMerged   Grammar = "merged"   // v2: project and segments on one sheet
	GrammarLegacy   Grammar = "legacy"   // v1: separate project, segment and location sheets
	GrammarBracket  Grammar = "bracket"  // delimited text with [PROJECT]/[SEGMENT]/[LOCATION:x] markers
)

// SectionKind is the type of a group of rows.
type SectionKind int

const (
	SectionNone SectionKind = iota
	SectionProject
	SectionSegment
	SectionLocation
)

func (k SectionKind) String() string {
	switch k {
	case SectionProject:
		return "project"
	case SectionSegment:
		return "segment"
	case SectionLocation:
		return "location"
	default:
		return "none"
	}
}

// LocationCategory tags a location as targeting or visit measurement.
type LocationCategory string

const (
	CategoryTargeting        LocationCategory = "targeting"
	CategoryVisitMeasurement LocationCategory = "visit_measurement"
)

// Row is one source row. Number is the 1-based row (or line) number the user
// sees in the source file.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the trimmed cell at i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return CleanCell(r.Cells[i])
}

// IsBlank reports whether every cell is empty after trimming.
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Section groups the rows of one PROJECT, SEGMENT or LOCATION block.
type Section struct {
	Kind SectionKind
	// Name is the label used in error reports (sheet name or marker).
	Name string
	// GroupKey is the segment or group name a keyed LOCATION section belongs to.
	GroupKey string
	Category LocationCategory
	Layout   *Layout
	Rows     []Row
	// Errors are section-level findings, such as a missing sheet or a
	// section without data rows.
	Errors []ValidationError
}

// Project is the single advertising project of a document.
type Project struct {
	AdvertiserName string `json:"advertiser_name" yaml:"advertiser_name"`
	AgencyName     string `json:"agency_name,omitempty" yaml:"agency_name,omitempty"`
	Appeal         string `json:"appeal_point" yaml:"appeal_point"`
	ServiceID      string `json:"universe_service_id,omitempty" yaml:"universe_service_id,omitempty"`
	ServiceName    string `json:"universe_service_name,omitempty" yaml:"universe_service_name,omitempty"`
	DeliveryStart  string `json:"delivery_start_date,omitempty" yaml:"delivery_start_date,omitempty"`
	DeliveryEnd    string `json:"delivery_end_date,omitempty" yaml:"delivery_end_date,omitempty"`
	Owner          string `json:"person_in_charge,omitempty" yaml:"person_in_charge,omitempty"`
	SubOwner       string `json:"sub_person_in_charge,omitempty" yaml:"sub_person_in_charge,omitempty"`
	Remarks        string `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Row            int    `json:"row" yaml:"row"`
}

// Segment is one targeting configuration. Its identity within a document is
// its position in ParseResult.Segments.
type Segment struct {
	Name           string   `json:"segment_name" yaml:"segment_name"`
	Media          []string `json:"media_id" yaml:"media_id"`
	Radius         string   `json:"designated_radius,omitempty" yaml:"designated_radius,omitempty"`
	Period         string   `json:"extraction_period,omitempty" yaml:"extraction_period,omitempty"`
	CustomStart    string   `json:"extraction_start_date,omitempty" yaml:"extraction_start_date,omitempty"`
	CustomEnd      string   `json:"extraction_end_date,omitempty" yaml:"extraction_end_date,omitempty"`
	Attribute      string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	DetectionCount int      `json:"detection_count,omitempty" yaml:"detection_count,omitempty"`
	TimeStart      string   `json:"detection_time_start,omitempty" yaml:"detection_time_start,omitempty"`
	TimeEnd        string   `json:"detection_time_end,omitempty" yaml:"detection_time_end,omitempty"`
	StayTime       string   `json:"stay_time,omitempty" yaml:"stay_time,omitempty"`
	AdsAccountID   string   `json:"ads_account_id,omitempty" yaml:"ads_account_id,omitempty"`
	Row            int      `json:"row" yaml:"row"`
}

// HasMedia reports whether code is one of the segment's media.
func (s Segment) HasMedia(code string) bool {
	for _, m := range s.Media {
		if m == code {
			return true
		}
	}
	return false
}

// Location is one POI, either targeting (owned by a segment) or visit
// measurement (owned by a named group).
type Location struct {
	Name        string           `json:"poi_name" yaml:"poi_name"`
	Address     string           `json:"address,omitempty" yaml:"address,omitempty"`
	Latitude    *float64         `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	LocationID  string           `json:"location_id,omitempty" yaml:"location_id,omitempty"`
	SegmentName string           `json:"segment_name,omitempty" yaml:"segment_name,omitempty"`
	GroupName   string           `json:"group_name,omitempty" yaml:"group_name,omitempty"`
	Category    LocationCategory `json:"poi_category" yaml:"poi_category"`
	Row         int              `json:"row" yaml:"row"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// PlacedLocation is a location with its resolved segment index, -1 for
// visit-measurement locations.
type PlacedLocation struct {
	Location     Location `json:"location" yaml:"location"`
	SegmentIndex int      `json:"segment_index" yaml:"segment_index"`
}

// Severity grades a ValidationError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// ValidationError is one localized finding. Row is the 1-based source row,
// 0 for section- or document-level findings.
type ValidationError struct {
	Section  string   `json:"section" yaml:"section"`
	Row      int      `json:"row" yaml:"row"`
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Code     string   `json:"code" yaml:"code"`
	Severity Severity `json:"severity" yaml:"severity"`
}

func (e ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Section)
	if e.Row > 0 {
		fmt.Fprintf(&b, " 行%d", e.Row)
	}
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// ParseResult is the outcome of one parse call. It is returned even when
// Project is nil or Errors is non-empty.
type ParseResult struct {
	Grammar   Grammar           `json:"grammar,omitempty" yaml:"grammar,omitempty"`
	Project   *Project          `json:"project" yaml:"project"`
	Segments  []Segment         `json:"segments" yaml:"segments"`
	Locations []PlacedLocation  `json:"locations" yaml:"locations"`
	Errors    []ValidationError `json:"errors" yaml:"errors"`
}

// Fatal reports whether parsing was aborted.
func (r *ParseResult) Fatal() bool {
	for _, e := range r.Errors {
		if e.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// HasErrors reports whether any finding is above warning level.
func (r *ParseResult) HasErrors() bool {
	for _, e := range r.Errors {
		if e.Severity != SeverityWarning {
			return true
		}
	}
	return false
}

// Counts returns the number of error-level and warning-level findings.
func (r *ParseResult) Counts() (errs, warnings int) {
	for _, e := range r.Errors {
		if e.Severity == SeverityWarning {
			warnings++
		} else {
			errs++
		}
	}
	return errs, warnings
}
