package core

// report.go exports the error list so users can fix their sheet offline.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ReportHeader is the header row of exported error reports.
var ReportHeader = []string{"セクション", "行番号", "項目", "エラー内容", "入力値"}

const reportSheet = "エラー一覧"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func reportRow(e ValidationError) []string {
	row := ""
	if e.Row > 0 {
		row = strconv.Itoa(e.Row)
	}
	return []string{e.Section, row, e.Field, e.Message, e.Value}
}

// WriteReportCSV writes the errors as CSV with a UTF-8 BOM so Excel opens
// it with the right encoding.
func WriteReportCSV(w io.Writer, errs []ValidationError) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	for _, e := range errs {
		if err := cw.Write(reportRow(e)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteReportWorkbook writes the errors to a single-sheet xlsx workbook.
func WriteReportWorkbook(w io.Writer, errs []ValidationError) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := setRow(f, 1, ReportHeader); err != nil {
		return err
	}
	for i, e := range errs {
		if err := setRow(f, i+2, reportRow(e)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
