package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-ets/internal/etsexport"
	"github.com/nerrad567/gray-logic-ets/internal/history"
	"github.com/nerrad567/gray-logic-ets/internal/publisher"
)

// Response headers describing a generated file.
const (
	headerRows     = "X-ETS-Rows"
	headerReplaced = "X-ETS-Replaced"
	headerExportID = "X-ETS-Export-ID"
)

// ExportRequest is the body of POST /api/v1/exports/ets-csv.
//
// It may be sent as JSON or, with an application/yaml content type, as
// YAML using the same field names.
type ExportRequest struct {
	Project  string              `json:"project" yaml:"project"`
	Locale   string              `json:"locale" yaml:"locale"`
	Overview *etsexport.Overview `json:"overview" yaml:"overview"`
}

// handleExportETSCSV encodes an overview and returns the Windows-1252 file.
//
// A failure to record the export is logged; the file is still returned,
// without an X-ETS-Export-ID header.
func (s *Server) handleExportETSCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeExportRequest(w, r)
	if !ok {
		return
	}
	if req.Overview == nil {
		writeError(w, ErrCodeBadRequest, "overview is required")
		return
	}

	project := strings.TrimSpace(req.Project)
	if project == "" {
		project = s.exportCfg.ProjectName
	}
	locale := req.Locale
	if locale == "" {
		locale = s.exportCfg.Locale
	}

	res, err := etsexport.Export(req.Overview, etsexport.Options{ProjectName: project})
	if err != nil {
		s.logger.Error("ETS export failed", "error", err)
		writeError(w, ErrCodeInternal, "export failed")
		return
	}

	if s.publisher != nil {
		rec, pubErr := s.publisher.Publish(r.Context(), publisher.Event{
			Project: project,
			Locale:  locale,
			Source:  history.SourceAPI,
			Result:  res,
		})
		if pubErr != nil {
			s.logger.Error("failed to record export", "project", project, "error", pubErr)
		} else if rec.ID != "" {
			w.Header().Set(headerExportID, rec.ID)
		}
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set(headerRows, strconv.Itoa(res.Stats.Rows))
	w.Header().Set(headerReplaced, strconv.Itoa(res.Stats.Replaced))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(res.Data)
}

// decodeExportRequest reads a JSON or YAML request body. On failure it
// writes the error response and returns false.
func (s *Server) decodeExportRequest(w http.ResponseWriter, r *http.Request) (*ExportRequest, bool) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			writeError(w, ErrCodeUnsupportedType, "invalid Content-Type")
			return nil, false
		}
		mediaType = mt
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, ErrCodeTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return nil, false
		}
		writeError(w, ErrCodeBadRequest, "failed to read request body")
		return nil, false
	}

	var req ExportRequest
	switch mediaType {
	case "application/json":
		err = json.Unmarshal(body, &req)
	case "application/yaml", "application/x-yaml", "text/yaml":
		err = yaml.Unmarshal(body, &req)
	default:
		writeError(w, ErrCodeUnsupportedType,
			"Content-Type must be application/json or application/yaml")
		return nil, false
	}
	if err != nil {
		writeError(w, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}

	return &req, true
}

// contentDisposition builds an attachment header. Non-ASCII filenames get
// an ASCII fallback plus an RFC 5987 filename* parameter.
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)

	header := `attachment; filename="` + fallback + `"`
	if fallback != filename {
		header += "; filename*=UTF-8''" + url.PathEscape(filename)
	}
	return header
}

// handleListExports returns the export history, newest first.
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, ErrCodeUnavailable, "export history is disabled")
		return
	}

	q := r.URL.Query()
	filter := history.Filter{Project: q.Get("project")}

	var err error
	if filter.Limit, err = queryInt(q, "limit"); err != nil {
		writeError(w, ErrCodeBadRequest, err.Error())
		return
	}
	if filter.Offset, err = queryInt(q, "offset"); err != nil {
		writeError(w, ErrCodeBadRequest, err.Error())
		return
	}

	res, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list exports", "error", err)
		writeError(w, ErrCodeInternal, "failed to list exports")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleGetExport returns a single history record.
func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, ErrCodeUnavailable, "export history is disabled")
		return
	}

	id := chi.URLParam(r, "id")

	rec, err := s.history.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, ErrCodeNotFound, "export not found")
			return
		}
		s.logger.Error("failed to get export", "id", id, "error", err)
		writeError(w, ErrCodeInternal, "failed to get export")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
