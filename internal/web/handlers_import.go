package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/cache"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/history"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/logging"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/web/templates"
)

var (
	errNoFile            = errors.New("no file provided")
	errFileTooLarge      = errors.New("file too large")
	errUnsupportedReport = errors.New("unsupported report format")
)

const maxHistoryListLimit = 200

// upload is one file received from a multipart form.
type upload struct {
	filename string
	data     []byte
	digest   string
}

// ImportResponse is the JSON body of POST /api/imports.
type ImportResponse struct {
	ImportID string            `json:"import_id"`
	Filename string            `json:"filename"`
	Cached   bool              `json:"cached"`
	Errors   int               `json:"error_count"`
	Warnings int               `json:"warning_count"`
	Result   *core.ParseResult `json:"result"`
}

// handleImport parses one uploaded workbook or CSV and returns the full
// result. Validation findings are part of a 200 response; only a fatal
// result (unknown layout, unreadable file) answers 422.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, uploadStatus(err))
		return
	}

	result, cached, err := s.parse(r.Context(), up)
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	importID := uuid.NewString()
	logger := logging.WithFields(r.Context(), "import_id", importID, "file", up.filename)

	if s.history != nil {
		if _, err := s.history.Record(WithRequestMetadata(r.Context(), r), importID, up.filename, result); err != nil {
			logger.Warn("failed to record import", "error", err)
		}
	}

	errs, warnings := result.Counts()
	logger.Info("import parsed",
		"grammar", result.Grammar,
		"segments", len(result.Segments),
		"locations", len(result.Locations),
		"errors", errs,
		"warnings", warnings,
		"cached", cached,
	)

	status := http.StatusOK
	if result.Fatal() {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("X-Import-ID", importID)
	w.Header().Set("X-Import-Errors", strconv.Itoa(errs))

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ImportSummary(importID, up.filename, result, cached).Render(r.Context(), w); err != nil {
			logger.Error("render import summary", "error", err)
		}
		return
	}

	writeJSON(w, status, ImportResponse{
		ImportID: importID,
		Filename: up.filename,
		Cached:   cached,
		Errors:   errs,
		Warnings: warnings,
		Result:   result,
	})
}

// handleImportReport parses an upload and returns its findings as a
// downloadable CSV (default) or xlsx report.
func (s *Server) handleImportReport(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, uploadStatus(err))
		return
	}

	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		s.respondError(w, r, fmt.Errorf("%w: %q", errUnsupportedReport, format), http.StatusBadRequest)
		return
	}

	result, _, err := s.parse(r.Context(), up)
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = core.WriteReportWorkbook(&buf, result.Errors)
	} else {
		err = core.WriteReportCSV(&buf, result.Errors)
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	errs, _ := result.Counts()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": reportName(up.filename, format),
	}))
	w.Header().Set("X-Import-Errors", strconv.Itoa(errs))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleImportHistory lists recent import runs.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, history.ErrDisabled, http.StatusNotFound)
		return
	}

	limit := parseIntParam(r, "limit", history.DefaultListLimit)
	if limit > maxHistoryListLimit {
		limit = maxHistoryListLimit
	}

	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.HistoryTable(runs).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render history", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleImportDetail returns one recorded run with its findings.
func (s *Server) handleImportDetail(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, history.ErrDisabled, http.StatusNotFound)
		return
	}

	run, err := s.history.Get(r.Context(), chi.URLParam(r, "importID"))
	if errors.Is(err, history.ErrNotFound) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// readUpload reads the "file" form field, bounded by the configured size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize)
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &upload{
		filename: filepath.Base(header.Filename),
		data:     data,
		digest:   cache.Digest(data),
	}, nil
}

// parse returns the cached result for the upload or parses it under the
// import limiter. Cache failures are logged and otherwise ignored.
func (s *Server) parse(ctx context.Context, up *upload) (*core.ParseResult, bool, error) {
	logger := logging.WithFields(ctx, "file", up.filename, "digest", up.digest[:12])

	// The extension picks the reader, so it is part of the cache key.
	key := up.digest + strings.ToLower(filepath.Ext(up.filename))

	if s.cache != nil {
		result, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		} else if ok {
			return result, true, nil
		}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, false, err
	}
	defer s.limiter.Release()

	parser := core.NewParser(core.Options{
		DefaultOwner: s.cfg.Import.DefaultOwner,
		Logger:       logger,
	})
	result := parser.Parse(up.filename, up.data)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			logger.Warn("cache store failed", "error", err)
		}
	}
	return result, false, nil
}

func uploadStatus(err error) int {
	if errors.Is(err, errFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, errNoFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// reportName turns "book.xlsx" into "book_errors.csv".
func reportName(filename, format string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "import"
	}
	return base + "_errors." + format
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
