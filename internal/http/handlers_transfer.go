package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
)

var contentTypes = map[string]string{
	records.FormatJSON: "application/json",
	records.FormatYAML: "application/yaml",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, bad := ParseFormat(r.URL.Query())
	if bad != nil {
		bad.Write(w)
		return
	}
	store, _ := s.current()
	snap := store.ExportData()

	var buf bytes.Buffer
	if err := snap.Encode(&buf, format); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	filename := fmt.Sprintf("smartfinance-%s.%s", snap.ExportDate.In(store.Location()).Format(core.DateLayout), format)
	NewResponse().
		Header("Content-Disposition", `attachment; filename="`+filename+`"`).
		Raw(contentTypes[format], buf.Bytes()).
		Write(w)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		ErrorResponse(http.StatusServiceUnavailable, "spreadsheet export is not configured").Write(w)
		return
	}
	store, _ := s.current()
	res, err := s.exporter.Export(r.Context(), store.ExportData())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Spreadsheet export failed",
			log.FieldComponent, log.ComponentSheets,
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		ErrorResponse(http.StatusBadGateway, "spreadsheet export failed").Write(w)
		return
	}
	JSON(http.StatusOK, res).Write(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("format") == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		q.Set("format", records.FormatYAML)
	}
	format, bad := ParseFormat(q)
	if bad != nil {
		bad.Write(w)
		return
	}

	payload, err := records.DecodeImport(http.MaxBytesReader(w, r.Body, maxImportBytes), format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "import document too large").Write(w)
			return
		}
		ErrorFor(r, err).Write(w)
		return
	}

	store, _ := s.current()
	stats, err := store.ImportData(r.Context(), payload)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, stats).Write(w)
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	store, _ := s.current()
	backups, err := store.ListBackups(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	JSON(http.StatusOK, backups).Write(w)
}
