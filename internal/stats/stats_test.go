package stats_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/stats"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/alecthomas/assert/v2"
)

func TestStats_nil(t *testing.T) {
	t.Parallel()

	var st *stats.Stats

	called := false
	err := st.DoStage(stats.StagePrune, func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	st.Log("ignored")
	st.StoreGraphStats(igraph.Stats{AddedTriples: 1})
	assert.Equal(t, igraph.Stats{}, st.GraphStats())
	assert.Equal(t, []stats.StageStats{}, st.All())
}

func TestStats_DoStage(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	st := stats.NewStats(&buffer)

	assert.NoError(t, st.DoStage(stats.StageParse, func() error {
		st.SetCount(42)
		return nil
	}))

	errBroken := errors.New("broken")
	err := st.DoStage(stats.StagePrune, func() error { return errBroken })
	assert.True(t, errors.Is(err, errBroken))

	all := st.All()
	assert.Equal(t, 2, len(all))
	assert.Equal(t, stats.StageParse, all[0].Stage)
	assert.Equal(t, 42, all[0].Count)
	assert.Equal(t, stats.StagePrune, all[1].Stage)

	assert.True(t, strings.Contains(buffer.String(), "FAILED failed stage"))
	assert.True(t, strings.Contains(buffer.String(), "stage=prune"))
}

func TestStats_GraphStats(t *testing.T) {
	t.Parallel()

	st := stats.NewStats(nil)
	assert.Equal(t, igraph.Stats{}, st.GraphStats())

	st.StoreGraphStats(igraph.Stats{AddedTriples: 10, RemovedTriples: 3})
	assert.Equal(t, uint64(10), st.GraphStats().AddedTriples)
	assert.Equal(t, uint64(3), st.GraphStats().RemovedTriples)
}
