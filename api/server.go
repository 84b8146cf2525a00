// Package api exposes the inference bridge over HTTP: CSV upload plus
// mission selection in, the unified mission-agnostic result table out. The
// handlers own upload bookkeeping only; all classification semantics live in
// the pipeline.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/db"
	"github.com/exoscan-data/exoplanet.report/internal/httputil"
	"github.com/exoscan-data/exoplanet.report/internal/mission"
	"github.com/exoscan-data/exoplanet.report/internal/model"
	"github.com/exoscan-data/exoplanet.report/internal/monitoring"
	"github.com/exoscan-data/exoplanet.report/internal/pipeline"
	"github.com/exoscan-data/exoplanet.report/internal/result"
	"github.com/exoscan-data/exoplanet.report/internal/table"
)

// maxUploadBytes bounds one multipart upload in memory.
const maxUploadBytes = 32 << 20

// Server serves the bridge API.
type Server struct {
	pipe         *pipeline.Pipeline
	db           *db.DB
	cfg          *config.BridgeConfig
	processedDir string
}

// NewServer builds a Server. processedDir is where emitted result tables
// are written for later download.
func NewServer(pipe *pipeline.Pipeline, database *db.DB, cfg *config.BridgeConfig, processedDir string) *Server {
	return &Server{
		pipe:         pipe,
		db:           database,
		cfg:          cfg,
		processedDir: processedDir,
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/summary", s.handleRunSummary)
	mux.HandleFunc("/processed/", s.handleDownload)
	mux.HandleFunc("/", s.handleHome)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	fmt.Fprintln(w, "exoplanet.report inference bridge")
}

// uploadResponse is the JSON body for a processed upload. Records carries at
// most MaxRows entries; Truncated reports whether the cap was hit. The full
// table is always available via ProcessedFile.
type uploadResponse struct {
	RunID         string                `json:"run_id"`
	Mission       string                `json:"mission"`
	Columns       []string              `json:"columns"`
	Records       []result.Record       `json:"records"`
	Truncated     bool                  `json:"truncated"`
	TotalRows     int                   `json:"total_rows"`
	FailedRows    []pipeline.RowFailure `json:"failed_rows,omitempty"`
	ImputedValues int                   `json:"imputed_values"`
	ProcessedFile string                `json:"processed_file"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	// Bound the body itself, not just the in-memory buffering, so an
	// oversized upload is rejected instead of spooled to disk.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("data_file")
	if err != nil {
		httputil.BadRequest(w, "missing data_file")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		httputil.BadRequest(w, "only CSV files are supported")
		return
	}

	missionName := r.FormValue("mission")
	res, err := s.pipe.Run(missionName, file)
	if err != nil {
		s.writeRunError(w, missionName, err)
		return
	}

	runID := uuid.New().String()
	processedName := processedFileName(runID, header.Filename)
	if err := s.writeProcessed(processedName, res); err != nil {
		monitoring.Logf("api: write processed table: %v", err)
		httputil.InternalServerError(w, "failed to write result table")
		return
	}

	run := db.NewRunFromResult(runID, filepath.Base(header.Filename), processedName, res)
	if err := s.db.RecordRun(run, res.Failures); err != nil {
		// The caller still gets their result; the audit trail is best-effort.
		monitoring.Logf("api: record run %s: %v", runID, err)
	}

	records := res.Records
	truncated := false
	if max := s.cfg.GetMaxRows(); len(records) > max {
		records = records[:max]
		truncated = true
	}

	httputil.WriteJSON(w, http.StatusOK, uploadResponse{
		RunID:         runID,
		Mission:       res.Mission.String(),
		Columns:       result.Header(),
		Records:       records,
		Truncated:     truncated,
		TotalRows:     res.TotalRows,
		FailedRows:    res.Failures,
		ImputedValues: res.ImputedValues,
		ProcessedFile: processedName,
	})
}

// writeRunError maps pipeline errors onto status codes: caller mistakes are
// 400s, configuration skew inside the bridge is a 500.
func (s *Server) writeRunError(w http.ResponseWriter, missionName string, err error) {
	switch {
	case errors.Is(err, mission.ErrUnknownMission):
		httputil.BadRequest(w, fmt.Sprintf("unknown mission %q: expected Kepler, K2 or TESS", missionName))
	case errors.Is(err, table.ErrEmptyTable):
		httputil.BadRequest(w, "uploaded table has no header row")
	case errors.Is(err, model.ErrFeatureShapeMismatch), errors.Is(err, model.ErrModelUnavailable):
		monitoring.Logf("api: structural failure for mission %q: %v", missionName, err)
		httputil.InternalServerError(w, err.Error())
	default:
		httputil.BadRequest(w, err.Error())
	}
}

func (s *Server) writeProcessed(name string, res *pipeline.Result) error {
	if err := os.MkdirAll(s.processedDir, 0o750); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.processedDir, name))
	if err != nil {
		return fmt.Errorf("create processed file: %w", err)
	}
	if err := res.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write processed table: %w", err)
	}
	return f.Close()
}

// processedFileName builds the stored name for an emitted table. Only the
// sanitised stem of the original name survives; the run ID prefix keeps
// names unique.
func processedFileName(runID, original string) string {
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	var clean strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			clean.WriteRune(r)
		}
	}
	name := clean.String()
	if name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s_%s_processed.csv", runID, name)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := s.db.RecentRuns(50)
	if err != nil {
		monitoring.Logf("api: list runs: %v", err)
		httputil.InternalServerError(w, "failed to list runs")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/processed/")
	// Reject anything that is not a bare emitted-table filename.
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, "_processed.csv") {
		httputil.NotFound(w, "no such file")
		return
	}
	path := filepath.Join(s.processedDir, name)
	if _, err := os.Stat(path); err != nil {
		httputil.NotFound(w, "no such file")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "text/csv")
	http.ServeFile(w, r, path)
}
