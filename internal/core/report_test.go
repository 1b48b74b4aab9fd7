package core

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

var reportErrors = []ValidationError{
	{Section: "[SEGMENT]", Row: 6, Field: "配信先", Message: "無効な配信先です: LINE", Value: "LINE", Code: CodeUnmapped, Severity: SeverityError},
	{Section: ruleSection, Message: "セグメント名が重複しています: A", Code: CodeDuplicateNames, Severity: SeverityError},
}

var wantReportRows = [][]string{
	ReportHeader,
	{"[SEGMENT]", "6", "配信先", "無効な配信先です: LINE", "LINE"},
	{ruleSection, "", "", "セグメント名が重複しています: A", ""},
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, reportErrors); err != nil {
		t.Fatalf("WriteReportCSV() error: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), utf8BOM) {
		t.Fatal("report does not start with a UTF-8 BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if diff := cmp.Diff(wantReportRows, records); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, nil); err != nil {
		t.Fatalf("WriteReportCSV() error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d rows, want header only", len(records))
	}
}

func TestWriteReportWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportWorkbook(&buf, reportErrors); err != nil {
		t.Fatalf("WriteReportWorkbook() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{reportSheet}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	// GetRows trims trailing empty cells.
	want := [][]string{
		ReportHeader,
		{"[SEGMENT]", "6", "配信先", "無効な配信先です: LINE", "LINE"},
		{ruleSection, "", "", "セグメント名が重複しています: A"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
