package api

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/exoscan-data/exoplanet.report/internal/httputil"
	"github.com/exoscan-data/exoplanet.report/internal/monitoring"
)

// handleRunSummary renders a quick HTML bar chart of one run's prediction
// class counts using go-echarts. This is a diagnostics view for eyeballing
// an upload without the full presentation UI.
// Query params:
//   - run_id (required)
func (s *Server) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "missing run_id")
		return
	}

	run, err := s.db.GetRun(runID)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("no run %q", runID))
		return
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s run %s", run.Mission, run.RunID),
			Subtitle: fmt.Sprintf("%d rows, %d failed, %d values imputed", run.TotalRows, run.FailedRows, run.ImputedValues),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"Candidate", "Confirmed", "False Positive", "Unknown"}).
		AddSeries("rows", []opts.BarData{
			{Value: run.Candidates},
			{Value: run.Confirmed},
			{Value: run.FalsePositives},
			{Value: run.Unknowns},
		})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		monitoring.Logf("api: render summary chart for %s: %v", runID, err)
	}
}
