package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Options configures a Parser.
type Options struct {
	// DefaultOwner fills the person in charge when the project row has none.
	DefaultOwner string
	// Logger receives debug-level progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Parser runs the import pipeline. It holds no per-call state and is safe
// for concurrent use.
type Parser struct {
	opts Options
}

// NewParser creates a Parser, filling unset options with defaults.
func NewParser(opts Options) *Parser {
	if opts.DefaultOwner == "" {
		opts.DefaultOwner = DefaultOwner
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Parser{opts: opts}
}

var defaultParser = NewParser(Options{})

// Parse parses a file with the default options.
func Parse(name string, data []byte) *ParseResult {
	return defaultParser.Parse(name, data)
}

// Parse reads and parses one file. name is used only to pick the reader.
func (p *Parser) Parse(name string, data []byte) *ParseResult {
	src, err := ReadSource(name, data)
	if err != nil {
		return readFailure(err)
	}
	return p.ParseSource(src)
}

// ParseWorkbook parses an xlsx workbook.
func (p *Parser) ParseWorkbook(r io.Reader) *ParseResult {
	wb, err := ReadWorkbook(r)
	if err != nil {
		return readFailure(err)
	}
	return p.ParseSource(&Source{Kind: SourceWorkbook, Workbook: wb})
}

// ParseDelimited parses bracket-marker text.
func (p *Parser) ParseDelimited(r io.Reader) *ParseResult {
	rows, err := ReadDelimited(r)
	if err != nil {
		return readFailure(err)
	}
	return p.ParseSource(&Source{Kind: SourceDelimited, Rows: rows})
}

// DetectGrammar reports the grammar of a file without parsing it.
func DetectGrammar(name string, data []byte) (Grammar, error) {
	src, err := ReadSource(name, data)
	if err != nil {
		return "", err
	}
	a, ok := Detect(src)
	if !ok {
		return "", errors.New("no recognized layout")
	}
	return a.Grammar(), nil
}

// findings buckets errors by pipeline stage so they can be emitted in a
// fixed order.
type findings struct {
	project  []ValidationError
	segment  []ValidationError
	location []ValidationError
	rules    []ValidationError
}

func (f *findings) bucket(kind SectionKind) *[]ValidationError {
	switch kind {
	case SectionSegment:
		return &f.segment
	case SectionLocation:
		return &f.location
	default:
		return &f.project
	}
}

func (f *findings) all() []ValidationError {
	out := make([]ValidationError, 0, len(f.project)+len(f.segment)+len(f.location)+len(f.rules))
	out = append(out, f.project...)
	out = append(out, f.segment...)
	out = append(out, f.location...)
	return append(out, f.rules...)
}

type projectCandidate struct {
	section *Section
	row     Row
}

// ParseSource runs detection, sectioning, building, resolution and the
// business rules over an already-read source.
func (p *Parser) ParseSource(src *Source) *ParseResult {
	log := p.opts.Logger

	adapter, ok := Detect(src)
	if !ok {
		log.Debug("no recognized layout")
		return fatalResult(CodeNoLayout, "対応しているレイアウトが見つかりません（シート名またはセクションマーカーを確認してください）")
	}

	sections, fileErrs := adapter.Sections(src)
	log.Debug("layout detected", "grammar", adapter.Grammar(), "sections", len(sections))

	result := &ParseResult{
		Grammar:   adapter.Grammar(),
		Segments:  []Segment{},
		Locations: []PlacedLocation{},
	}
	var (
		f            findings
		candidates   []projectCandidate
		segSections  []string
		built        []builtLocation
		segmentCount int
	)
	f.project = append(f.project, fileErrs...)

	for i := range sections {
		sec := &sections[i]
		bucket := f.bucket(sec.Kind)
		*bucket = append(*bucket, sec.Errors...)

		for _, row := range sec.Rows {
			switch sec.Kind {
			case SectionProject:
				candidates = append(candidates, projectCandidate{section: sec, row: row})

			case SectionSegment:
				segmentCount++
				seg, errs := buildSegment(sec, row, segmentCount)
				*bucket = append(*bucket, errs...)
				if seg != nil {
					result.Segments = append(result.Segments, *seg)
					segSections = append(segSections, sec.Name)
				}

			case SectionLocation:
				loc, errs := buildLocation(sec, row)
				*bucket = append(*bucket, errs...)
				if loc != nil {
					built = append(built, builtLocation{section: sec.Name, location: *loc})
				}
			}
		}
	}

	first, rest, ok := keepFirst(candidates)
	if ok {
		project, complete, errs := buildProject(first.section, first.row, p.opts.DefaultOwner)
		f.project = append(f.project, errs...)
		if complete {
			result.Project = project
		}
		if len(rest) > 0 {
			f.rules = append(f.rules, extraProjectWarning(rest[0].section.Name, rest[0].row, len(candidates)))
		}
	} else {
		f.project = append(f.project, ValidationError{
			Section:  "FILE",
			Message:  "案件情報が入力されていません",
			Code:     CodeNoProject,
			Severity: SeverityError,
		})
	}

	placed, refErrs := resolveLocations(result.Segments, built)
	result.Locations = append(result.Locations, placed...)
	f.location = append(f.location, refErrs...)

	f.rules = append(f.rules, checkDuplicateNames(result.Segments)...)
	f.rules = append(f.rules, checkCTVExclusivity(result.Segments)...)
	f.rules = append(f.rules, checkLockedPeriods(result.Segments, segSections)...)

	result.Errors = f.all()

	errCount, warnCount := result.Counts()
	log.Debug("parse finished",
		"grammar", result.Grammar,
		"project", result.Project != nil,
		"segments", len(result.Segments),
		"locations", len(result.Locations),
		"errors", errCount,
		"warnings", warnCount,
	)
	return result
}

// fatalResult is the only unrecoverable outcome: a single file-level error
// with no entities.
func fatalResult(code, message string) *ParseResult {
	return &ParseResult{
		Segments:  []Segment{},
		Locations: []PlacedLocation{},
		Errors: []ValidationError{{
			Section:  "FILE",
			Message:  message,
			Code:     code,
			Severity: SeverityFatal,
		}},
	}
}

func readFailure(err error) *ParseResult {
	if errors.Is(err, ErrUnsupportedFile) {
		return fatalResult(CodeUnsupported, "対応していないファイル形式です（.xlsx または .csv）")
	}
	return fatalResult(CodeFileUnreadable, fmt.Sprintf("ファイル読み込みエラー: %v", err))
}

// ParseReader reads r fully and parses it. Reading is the only blocking step.
func (p *Parser) ParseReader(name string, r io.Reader) *ParseResult {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return readFailure(err)
	}
	return p.Parse(name, buf.Bytes())
}
