package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SourceKind distinguishes workbook and delimited-text input.
type SourceKind int

const (
	SourceDelimited SourceKind = iota
	SourceWorkbook
)

// Sheet is one worksheet of a workbook. Key is the normalized sheet name
// used for layout detection.
type Sheet struct {
	Name string
	Key  string
	Rows []Row
}

// Workbook holds every worksheet in workbook order.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the first sheet whose normalized name equals key.
func (w *Workbook) Sheet(key string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Key == key {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Source is the row-level view of one input file.
type Source struct {
	Kind     SourceKind
	Workbook *Workbook // SourceWorkbook only
	Rows     []Row     // SourceDelimited only
}

// ErrUnsupportedFile is returned for inputs that are neither a workbook nor text.
var ErrUnsupportedFile = errors.New("unsupported file type")

var zipMagic = []byte("PK\x03\x04")

// ReadSource picks the reader from the file extension, falling back to the
// zip signature for files without a known extension.
func ReadSource(name string, data []byte) (*Source, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return readWorkbookSource(data)
	case ".csv", ".txt", ".tsv":
		return readDelimitedSource(data)
	case ".xls":
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return readWorkbookSource(data)
	}
	return readDelimitedSource(data)
}

func readWorkbookSource(data []byte) (*Source, error) {
	wb, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Source{Kind: SourceWorkbook, Workbook: wb}, nil
}

func readDelimitedSource(data []byte) (*Source, error) {
	rows, err := ReadDelimited(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Source{Kind: SourceDelimited, Rows: rows}, nil
}

// ReadWorkbook loads every sheet of an xlsx workbook. Cells are read as raw
// values so dates arrive as serial numbers regardless of display format.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		cells, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		sheet := Sheet{Name: name, Key: NormalizeSheetName(name), Rows: make([]Row, 0, len(cells))}
		for i, c := range cells {
			sheet.Rows = append(sheet.Rows, Row{Number: i + 1, Cells: c})
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// ReadDelimited reads RFC-4180 comma-separated text. Row numbers are the
// source line numbers; blank lines and '#' comment lines are dropped.
func ReadDelimited(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.LazyQuotes = true

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{Number: line, Cells: rec})
	}
	return rows, nil
}
