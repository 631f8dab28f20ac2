// Package stats provides Stats
package stats

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/pkg/perf"
	"github.com/tkw1536/pkglib/lazy"
)

// Stats records the stages of a single pipeline run and logs them to an underlying logger.
//
// Stats is safe to access concurrently, however the caller is responsible for only running one stage at a time.
//
// A nil Stats is valid, and discards any information written to it.
type Stats struct {
	m sync.RWMutex // m protects current and all

	logger *slog.Logger

	gstats lazy.Lazy[igraph.Stats]

	current StageStats   // current holds information about the current stage
	all     []StageStats // all hold information about the finished stages
}

// NewStats creates a new stats object that writes text logs to the given output.
// When w is nil, nothing is logged, but stages are still recorded.
func NewStats(w io.Writer) *Stats {
	if w == nil {
		return &Stats{}
	}
	return NewStatsWithLogger(slog.New(slog.NewTextHandler(w, nil)))
}

// NewStatsWithLogger creates a new stats object that writes to the given logger.
func NewStatsWithLogger(logger *slog.Logger) *Stats {
	return &Stats{logger: logger}
}

// Logger returns the logger associated with this stats, or nil.
func (st *Stats) Logger() *slog.Logger {
	if st == nil {
		return nil
	}
	return st.logger
}

// StoreGraphStats stores the most recent statistics of the graph being worked on.
// If st is nil, this call has no effect.
func (st *Stats) StoreGraphStats(stats igraph.Stats) {
	if st == nil {
		return
	}
	st.gstats.Set(stats)
}

// GraphStats returns the most recently stored graph statistics.
func (st *Stats) GraphStats() igraph.Stats {
	if st == nil {
		var zero igraph.Stats
		return zero
	}
	return st.gstats.Get(nil)
}

// Current returns a copy of the current StageStats
func (st *Stats) Current() StageStats {
	if st == nil {
		var zero StageStats
		return zero
	}
	st.m.RLock()
	defer st.m.RUnlock()
	return st.current
}

// All returns all stages recorded so far, including the current one.
func (st *Stats) All() []StageStats {
	if st == nil {
		return []StageStats{}
	}

	st.m.RLock()
	defer st.m.RUnlock()

	all := append([]StageStats{}, st.all...)
	if st.current.Stage != StageInitial {
		all = append(all, st.current)
	}
	return all
}

// Log logs an informational message with the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Stats) Log(message string, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}
	st.logger.Info(message, fields...)
}

// LogDebug logs a debug message with the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Stats) LogDebug(message string, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}
	st.logger.Debug(message, fields...)
}

// LogError logs an error message containing the provided error and the provided key, value field pairs.
//
// When status or the associated logger are nil, no logging occurs.
func (st *Stats) LogError(message string, err error, fields ...any) {
	if st == nil || st.logger == nil {
		return
	}

	st.logger.Error("FAILED "+message, append([]any{"err", err}, fields...)...)
}

// LogFatal is like LogError followed by os.Exit(1).
// When the associated logger are nil, os.Exit(1) is called immediately.
func (st *Stats) LogFatal(message string, err error) {
	st.LogError(message, err)
	os.Exit(1)
}

// Diff returns a performance diff starting at the first, and ending at the last stage.
// If status is nil, a zero diff is returned.
func (st *Stats) Diff() perf.Diff {
	if st == nil {
		var zero perf.Diff
		return zero
	}

	st.m.RLock()
	defer st.m.RUnlock()

	min := st.current.Start
	max := st.current.End

	for _, ss := range st.all {
		if min.Time.IsZero() || ss.Start.Time.Before(min.Time) {
			min = ss.Start
		}
		if max.Time.IsZero() || ss.End.Time.After(max.Time) {
			max = ss.End
		}
	}

	return max.Sub(min)
}

// Start starts a new stage, ending the previous one if any.
//
// If st is nil, this function has no effect.
func (st *Stats) Start(stage Stage) {
	if st == nil {
		return
	}

	st.m.Lock()
	defer st.m.Unlock()

	st.end()

	st.current.Stage = stage
	st.current.Start = perf.Now()

	if st.logger != nil {
		st.logger.Debug("start", "stage", stage)
	}
}

// End ends the current stage if any.
//
// If st is nil, this function has no effect.
func (st *Stats) End() (prev StageStats) {
	if st == nil {
		return
	}

	st.m.Lock()
	defer st.m.Unlock()

	return st.end()
}

// end implements End.
// st must not be nil st.m must be held for writing.
func (st *Stats) end() (prev StageStats) {
	if st.current.Stage == StageInitial {
		return
	}

	st.current.End = perf.Now()
	st.all = append(st.all, st.current)
	prev = st.current
	st.current = StageStats{}

	if st.logger != nil {
		if prev.Count != 0 {
			st.logger.Debug("end", "stage", prev.Stage, "took", prev.Diff(), "count", prev.Count)
		} else {
			st.logger.Debug("end", "stage", prev.Stage, "took", prev.Diff())
		}
	}
	return
}

// SetCount records the number of items the current stage worked on.
// If st is nil, has no effect.
func (st *Stats) SetCount(count int) {
	if st == nil {
		return
	}

	st.m.Lock()
	defer st.m.Unlock()

	st.current.Count = count
}

// DoStage is a convenience wrapper to start a new stage, call f, and log the resulting error if any.
//
// If st is nil, immediately invokes f.
func (st *Stats) DoStage(stage Stage, f func() error) error {
	if st == nil {
		return f()
	}

	st.Start(stage)
	err := f()
	st.End()

	if err != nil {
		st.LogError("failed stage", err, "stage", stage)
	}
	return err
}

// StageStats holds the stats for a specific stage
type StageStats struct {
	Stage Stage

	Start perf.Snapshot // At the start of the stage
	End   perf.Snapshot // At the end of the stage

	Count int // number of items worked on, if reported
}

// Diff returns a diff of the given stage
func (ss StageStats) Diff() perf.Diff {
	return ss.End.Sub(ss.Start)
}

// Stage represents a stage used for statistics
type Stage string

const (
	StageInitial        Stage = ""
	StageFetch          Stage = "fetch"
	StageParse          Stage = "parse"
	StagePrune          Stage = "prune"
	StageSweep          Stage = "sweep"
	StageRewriteReplace Stage = "rewrite/replace"
	StageRewriteHydra   Stage = "rewrite/hydra"
	StageEnrich         Stage = "enrich"
	StageSerialize      Stage = "serialize"
)
