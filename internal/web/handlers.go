package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bmsview/internal/cache"
	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/store"
	"github.com/JonMunkholm/bmsview/internal/web/templates"
)

// maxListLimit caps the page size of the history listing.
const maxListLimit = 500

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// FileResult is one file's entry in the analyze response.
type FileResult struct {
	FileName string         `json:"file_name"`
	Report   *core.Report   `json:"report,omitempty"`
	Error    *ErrorResponse `json:"error,omitempty"`
}

// AnalyzeResponse is the JSON body of POST /api/analyze.
type AnalyzeResponse struct {
	Results []FileResult `json:"results"`
}

// StatusResponse is the JSON body of GET /api/status.
type StatusResponse struct {
	Limiter core.LimiterStatus `json:"limiter"`
	Cache   cache.StatsSummary `json:"cache"`
	History bool               `json:"history"`
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page("BMS Log Viewer", s.service.HistoryEnabled()).Render(r.Context(), w); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
	}
}

// handleAnalyze analyzes every "file" part of a multipart upload.
//
// Query parameters:
//   - downsample: keep every Nth row of series and preview (default 1)
//   - preview_rows: raw rows to include; 0 omits the preview, -1 includes all
//   - series: include plot series for data logs (default true)
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	maxFile := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxFile*int64(s.cfg.Ingest.MaxBatchFiles)+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, fmt.Errorf("%w: request body over %d bytes", core.ErrFileTooLarge, tooBig.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFiles, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, err := readParts(r.MultipartForm.File["file"], maxFile)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	results, err := s.service.AnalyzeBatch(ctx, files)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	opts := core.ReportOptions{
		Downsample:  queryInt(r, "downsample", 1),
		PreviewRows: queryInt(r, "preview_rows", s.cfg.Ingest.PreviewRows),
		Series:      queryBool(r, "series", true),
	}

	resp := AnalyzeResponse{Results: make([]FileResult, len(results))}
	for i, res := range results {
		fr := FileResult{FileName: res.FileName}
		if res.Err != nil {
			msg := core.MapError(res.Err)
			fr.Error = &ErrorResponse{Error: msg.Message, Message: msg.Message, Action: msg.Action, Code: msg.Code}
		} else {
			report := core.BuildReport(res.Analysis, opts)
			fr.Report = &report
		}
		resp.Results[i] = fr
	}

	if isHTMX(r) && !wantsJSON(r) {
		s.renderResults(w, r, resp.Results)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// renderResults writes report cards, with an alert for files that failed.
func (s *Server) renderResults(w http.ResponseWriter, r *http.Request, results []FileResult) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, fr := range results {
		var err error
		if fr.Error != nil {
			err = templates.ErrorAlert(fr.FileName+": "+fr.Error.Message, fr.Error.Action, fr.Error.Code).Render(r.Context(), w)
		} else {
			err = templates.Report(*fr.Report).Render(r.Context(), w)
		}
		if err != nil {
			return
		}
	}
}

// readParts loads uploaded parts into memory. At most maxSize+1 bytes are
// read per part so oversized files are still rejected by the service.
func readParts(headers []*multipart.FileHeader, maxSize int64) ([]core.File, error) {
	files := make([]core.File, 0, len(headers))
	for _, h := range headers {
		content, err := readPart(h, maxSize)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", h.Filename, err)
		}
		files = append(files, core.File{Name: h.Filename, Content: content})
	}
	return files, nil
}

func readPart(h *multipart.FileHeader, maxSize int64) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxSize+1))
}

// handleListAnalyses lists persisted analyses, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := min(queryInt(r, "limit", store.DefaultListLimit), maxListLimit)
	offset := max(queryInt(r, "offset", 0), 0)

	recs, err := s.service.History(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) && !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.History(recs).Render(r.Context(), w)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": recs, "limit": limit, "offset": offset})
}

// handleGetAnalysis returns one persisted analysis summary.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleStatus reports analysis slot usage and cache statistics.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Limiter: s.service.LimiterStatus(),
		Cache:   s.service.CacheStats(),
		History: s.service.HistoryEnabled(),
	})
}

// handleHealth reports that the process is serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether dependencies such as the database respond.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Ready(ctx); err != nil {
		msg := core.MapError(err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "code": msg.Code})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// queryInt parses an integer query parameter, returning def when it is
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// queryBool parses a boolean query parameter, returning def when it is
// absent or malformed.
func queryBool(r *http.Request, name string, def bool) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return b
}
