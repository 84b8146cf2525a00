// Package pipeline wires the bridge stages end to end: schema mapping,
// sanitisation, descriptor derivation, model routing and result
// normalisation. One Pipeline serves one process; each upload gets its own
// Run, and rows within a run are processed independently on a bounded
// worker pool with input order preserved in the output.
package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/descriptor"
	"github.com/exoscan-data/exoplanet.report/internal/mission"
	"github.com/exoscan-data/exoplanet.report/internal/model"
	"github.com/exoscan-data/exoplanet.report/internal/monitoring"
	"github.com/exoscan-data/exoplanet.report/internal/result"
	"github.com/exoscan-data/exoplanet.report/internal/sanitize"
	"github.com/exoscan-data/exoplanet.report/internal/table"
)

// RowFailure records one row that could not be processed. Row-level data
// problems never abort the sibling rows.
type RowFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result is the outcome of one upload run. Records holds the successful
// rows in input order; Failures the skipped ones.
type Result struct {
	Mission       mission.ID
	Records       []result.Record
	Failures      []RowFailure
	TotalRows     int
	ImputedValues int
}

// ClassCounts tallies records per prediction code. Codes outside the
// trained class set count under -1.
func (r *Result) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, rec := range r.Records {
		code := rec.Code
		if code < 0 || code > 2 {
			code = -1
		}
		counts[code]++
	}
	return counts
}

// WriteCSV emits the unified output table for the run.
func (r *Result) WriteCSV(w io.Writer) error {
	rows := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = rec.CSVRow()
	}
	return table.Write(w, result.Header(), rows)
}

// Pipeline is the stateless per-row bridge. Construct once at startup and
// share across uploads; all members are read-only after construction.
type Pipeline struct {
	cfg       *config.BridgeConfig
	sanitizer *sanitize.Sanitizer
	engine    *descriptor.Engine
	router    *model.Router
}

// New builds a Pipeline over the given configuration and model router.
func New(cfg *config.BridgeConfig, router *model.Router) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		sanitizer: sanitize.New(cfg),
		engine:    descriptor.NewEngine(cfg),
		router:    router,
	}
}

// rowOutcome is the per-row slot written by exactly one worker.
type rowOutcome struct {
	record     result.Record
	imputed    int
	failure    *RowFailure
	structural error
}

// Run processes one uploaded table for the named mission. Structural
// problems (unknown mission, unreadable table, feature shape mismatch)
// fail the whole run with no partial result; row-level problems are
// isolated into Failures.
func (p *Pipeline) Run(missionName string, r io.Reader) (*Result, error) {
	schema, err := mission.Resolve(missionName)
	if err != nil {
		return nil, err
	}

	tbl, err := table.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read upload table: %w", err)
	}

	curveCol := tbl.ColumnIndex(p.cfg.GetCurveColumn())
	outcomes := make([]rowOutcome, len(tbl.Rows))

	workers := p.cfg.GetWorkers()
	if workers > len(tbl.Rows) {
		workers = len(tbl.Rows)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = p.processRow(schema, tbl, curveCol, i)
			}
		}()
	}
	for i := range tbl.Rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	res := &Result{Mission: schema.ID(), TotalRows: len(tbl.Rows)}
	for _, out := range outcomes {
		if out.structural != nil {
			// Configuration/version skew between schema, descriptors and
			// artifact. Must not degrade into a partial result.
			return nil, out.structural
		}
		if out.failure != nil {
			res.Failures = append(res.Failures, *out.failure)
			continue
		}
		res.Records = append(res.Records, out.record)
		res.ImputedValues += out.imputed
	}

	monitoring.Logf("pipeline: %s run complete: %d rows, %d ok, %d failed, %d values imputed",
		schema.ID(), res.TotalRows, len(res.Records), len(res.Failures), res.ImputedValues)
	return res, nil
}

// processRow runs the per-row stages for the table row at position i.
func (p *Pipeline) processRow(schema *mission.Schema, tbl *table.Table, curveCol, i int) rowOutcome {
	raw := tbl.Rows[i]
	if raw.Err != nil {
		return rowOutcome{failure: &RowFailure{Index: raw.Index, Reason: raw.Err.Error()}}
	}

	mapped := schema.Map(tbl.Header, raw.Cells)
	row, imputed := p.sanitizer.Sanitize(mapped)

	var curve []float64
	if curveCol >= 0 && curveCol < len(raw.Cells) {
		curve = table.ParseCurve(raw.Cells[curveCol])
	}
	set := p.engine.Derive(row, curve)

	prediction, err := p.router.Predict(schema.ID(), row, set)
	if err != nil {
		// Shape mismatches and missing artifacts are structural: they hold
		// for every row, so the run aborts rather than emitting garbage.
		return rowOutcome{structural: fmt.Errorf("row %d: %w", raw.Index, err)}
	}

	return rowOutcome{
		record:  result.Normalize(raw.Index, row, prediction, imputed),
		imputed: len(imputed),
	}
}
