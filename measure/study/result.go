package study

import (
	"github.com/cwbudde/algo-recon/measure/quality"
	"github.com/cwbudde/algo-recon/stats/agg"
)

// Cell summarizes one (strategy, coordinate) pair of a study grid: the
// number of scored and excluded observations plus the first two moments
// of every quality metric.
type Cell struct {
	Strategy   string     `json:"strategy"`
	Coordinate float64    `json:"coordinate"`
	Count      int        `json:"count"`
	Failed     int        `json:"failed"`
	MSE        agg.Moment `json:"mse"`
	SNRdB      agg.Moment `json:"snr_db"`
	PeakError  agg.Moment `json:"peak_error"`
	Bias       agg.Moment `json:"bias"`
}

// Table lists study cells in deterministic order: coordinates as
// configured, and within each coordinate the baseline row followed by
// the strategies in registration order.
type Table []Cell

// Cell returns the entry for a strategy at a coordinate.
func (t Table) Cell(strategy string, coordinate float64) (Cell, bool) {
	for _, c := range t {
		if c.Strategy == strategy && c.Coordinate == coordinate {
			return c, true
		}
	}

	return Cell{}, false
}

// stratResult accumulates the scored metrics and failure count of one
// strategy within a single repetition.
type stratResult struct {
	failed int
	mse    agg.Accumulator
	snr    agg.Accumulator
	peak   agg.Accumulator
	bias   agg.Accumulator
}

func (r *stratResult) observe(m quality.MetricSet) {
	r.mse.Add(m.MSE)
	r.snr.Add(m.SNRdB)
	r.peak.Add(m.PeakError)
	r.bias.Add(m.Bias)
}

func (r *stratResult) merge(b stratResult) {
	r.failed += b.failed
	r.mse.Merge(b.mse)
	r.snr.Merge(b.snr)
	r.peak.Merge(b.peak)
	r.bias.Merge(b.bias)
}

// foldTable reduces per-repetition slots into the final table. Folding
// walks the slots in index order, so the table is identical no matter
// how many workers filled them; repetitions that never ran (a canceled
// study) are skipped entirely.
func foldTable(slots [][]stratResult, names []string, coords []float64, reps int) Table {
	table := make(Table, 0, len(coords)*len(names))

	for c, coord := range coords {
		accs := make([]stratResult, len(names))

		for r := 0; r < reps; r++ {
			slot := slots[c*reps+r]
			if slot == nil {
				continue
			}

			for s := range accs {
				accs[s].merge(slot[s])
			}
		}

		for s, name := range names {
			table = append(table, Cell{
				Strategy:   name,
				Coordinate: coord,
				Count:      accs[s].mse.Count(),
				Failed:     accs[s].failed,
				MSE:        accs[s].mse.Moment(),
				SNRdB:      accs[s].snr.Moment(),
				PeakError:  accs[s].peak.Moment(),
				Bias:       accs[s].bias.Moment(),
			})
		}
	}

	return table
}
