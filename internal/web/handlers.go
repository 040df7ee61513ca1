package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/langtools/langcodes/internal/audit"
	"github.com/langtools/langcodes/internal/codetable"
	"github.com/langtools/langcodes/internal/langdata"
	"github.com/langtools/langcodes/internal/logging"
	"github.com/langtools/langcodes/internal/metrics"
)

// unknownLanguage is reported for codes absent from the table.
const unknownLanguage = "Unknown"

// usageDoc describes the service to augmentation clients. Served
// verbatim on GET /.
const usageDoc = `{
  "result": {
    "id": "language-detector",
    "name": "language-detector",
    "description": "Determine language code from text",
    "in": {
      "text": {
        "type": "string"
      }
    },
    "out": {
      "iso6391code": {
        "type": "string"
      },
      "name": {
        "type": "string"
      }
    }
  }
}`

// handleUsage sends the usage information response.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, usageDoc)
}

// handleNotFound sends a JSON 404.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	metrics.InvalidRequests.Inc()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, `{"error":"Not found"}`)
}

// handleHealth reports liveness and the size of the loaded table.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"languages": s.Table().Len(),
	})
}

type detectRequest struct {
	Request []detectItem `json:"request"`
}

type detectItem struct {
	Text *string `json:"text"`
}

type detectResult struct {
	Error string `json:"error,omitempty"`
	Code  string `json:"iso6391code,omitempty"`
	Name  string `json:"name,omitempty"`
}

type detectResponse struct {
	Response []detectResult `json:"response"`
}

// handleDetect classifies a batch of texts.
//
// Status is 200 when every object resolved to a known language, 203
// when any code was missing from the table, and 400 when the request
// itself (or any object in it) was malformed.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		metrics.InvalidRequests.Inc()
		logger.Warn("request did not set Content-Type to application/json", "content_type", ct)
		writeError(w, r, http.StatusBadRequest, "Content-Type must be set to application/json")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.Detect.BodyLimit))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error reading request body")
		return
	}

	var req detectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.InvalidRequests.Inc()
		logger.Warn("request was invalid JSON", "error", err)
		writeError(w, r, http.StatusBadRequest, "Unable to parse request - invalid JSON detected")
		return
	}
	if req.Request == nil {
		metrics.InvalidRequests.Inc()
		writeError(w, r, http.StatusBadRequest, "Unable to parse request - missing request key")
		return
	}

	table := s.Table()
	status := http.StatusOK
	results := make([]detectResult, 0, len(req.Request))

	for _, item := range req.Request {
		if item.Text == nil {
			metrics.ObjectsProcessed.WithLabelValues("unsuccessful").Inc()
			status = http.StatusBadRequest
			results = append(results, detectResult{Error: "Missing text key"})
			continue
		}

		start := time.Now()
		detected := s.detector.Detect(*item.Text)

		name, known := table.Lookup(detected.Code)
		if !known {
			name = unknownLanguage
			if status == http.StatusOK {
				status = http.StatusNonAuthoritativeInfo
			}
			logger.Warn("unknown language code in detection result", "code", detected.Code)
		}

		results = append(results, detectResult{Code: detected.Code, Name: name})

		metrics.ObjectsProcessed.WithLabelValues("successful").Inc()
		metrics.DetectedLanguage.WithLabelValues(name).Inc()

		if s.auditLog != nil {
			s.auditLog.Record(audit.Entry{
				Code:      detected.Code,
				Language:  name,
				Reliable:  detected.Reliable,
				TextChars: utf8.RuneCountInString(*item.Text),
				Took:      time.Since(start),
			})
		}
	}

	writeJSON(w, r, status, detectResponse{Response: results})
}

// handleListLanguages returns the full code table.
func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	table := s.Table()
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"total":     table.Len(),
		"languages": table.All(),
	})
}

// handleGetLanguage resolves a single code.
func (s *Server) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	name, ok := s.Table().Lookup(code)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown language code")
		return
	}

	writeJSON(w, r, http.StatusOK, detectResult{Code: code, Name: name})
}

// rebuildResponse is returned after a successful table rebuild.
type rebuildResponse struct {
	Total int    `json:"total"`
	Saved string `json:"saved"`
}

// handleRebuildTable rebuilds the code table from an uploaded source
// listing. The new table replaces the served one and is persisted to
// the configured table path only when no code is ambiguous; a listing
// with overlaps gets a 409 carrying the full conflict report and
// leaves the current table untouched.
func (s *Server) handleRebuildTable(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	// MaxBytesReader errors on an over-limit body; a plain LimitReader
	// would truncate mid-line and commit a partial table.
	grouped, err := codetable.Parse(http.MaxBytesReader(w, r.Body, s.cfg.Detect.RebuildLimit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "source listing exceeds size limit")
			return
		}
		writeError(w, r, http.StatusBadRequest, "unable to read source listing")
		return
	}

	if conflicts := grouped.Conflicts(); len(conflicts) > 0 {
		logger.Warn("table rebuild rejected", "conflicts", len(conflicts))
		writeJSON(w, r, http.StatusConflict, map[string]interface{}{
			"error":    "source listing has overlapping codes",
			"overlaps": conflicts,
		})
		return
	}

	result, err := grouped.Result()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "unable to normalize table")
		return
	}

	if err := result.WriteFile(s.cfg.Detect.TablePath); err != nil {
		logger.Error("failed to persist rebuilt table", "error", err, "path", s.cfg.Detect.TablePath)
		writeError(w, r, http.StatusInternalServerError, "unable to save table")
		return
	}

	s.swapTable(langdata.New(result))
	logger.Info("language table rebuilt", "total", grouped.Len(), "path", s.cfg.Detect.TablePath)

	writeJSON(w, r, http.StatusOK, rebuildResponse{
		Total: grouped.Len(),
		Saved: s.cfg.Detect.TablePath,
	})
}

// handleAuditLog returns recent detection events.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if s.auditLog == nil {
		writeError(w, r, http.StatusServiceUnavailable, "audit store is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.auditLog.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "unable to query audit log")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}
