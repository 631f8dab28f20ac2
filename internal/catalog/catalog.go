// Package catalog filters and rewrites DCAT catalogs.
//
// A catalog is loaded into a fresh graph, which is then modified in place by a fixed sequence of stages:
//
//   - datasets without published data are pruned, along with their distributions
//   - orphaned blank nodes and locations are swept away
//   - access and download urls are rewritten according to configured prefixes
//   - pagination links are rewritten to point to the proxy itself
//   - distributions without a download url receive their access url as one
package catalog

import (
	"errors"
	"fmt"
	"io"

	"github.com/FAU-CDI/catalogproxy/internal/rdfio"
	"github.com/FAU-CDI/catalogproxy/internal/sanitize"
	"github.com/FAU-CDI/catalogproxy/internal/stats"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
)

// cspell:words DCAT

// Config configures a filter.
type Config struct {
	// BaseURL is the url the proxy is reachable under.
	// Pagination links are rewritten to start with it.
	BaseURL string

	// ReplaceURL holds pairs of source and target url prefixes.
	// Each access and download url starting with a source prefix has it replaced by the target.
	ReplaceURL []string

	// Cache is a directory to store graphs in.
	// When empty, graphs are held in memory.
	Cache string
}

// DefaultBaseURL is the default for [Config.BaseURL]
const DefaultBaseURL = "http://localhost:8080/"

// ErrOddReplacements indicates that [Config.ReplaceURL] does not consist of pairs.
var ErrOddReplacements = errors.New("replacement urls must be given in pairs of source and target")

// ErrParse indicates that the input could not be parsed as a catalog.
var ErrParse = errors.New("failed to parse catalog")

// Replacement replaces a url prefix.
type Replacement struct {
	From string
	To   string
}

// Filter filters catalogs.
// A filter may be used concurrently, every call works on its own graph.
type Filter struct {
	baseURL      string
	replacements []Replacement
	cache        string
}

// NewFilter validates config and creates a new filter.
func NewFilter(config Config) (*Filter, error) {
	if len(config.ReplaceURL)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d urls", ErrOddReplacements, len(config.ReplaceURL))
	}

	filter := &Filter{
		baseURL:      config.BaseURL,
		replacements: make([]Replacement, 0, len(config.ReplaceURL)/2),
		cache:        config.Cache,
	}
	if filter.baseURL == "" {
		filter.baseURL = DefaultBaseURL
	}
	for i := 0; i < len(config.ReplaceURL); i += 2 {
		filter.replacements = append(filter.replacements, Replacement{
			From: config.ReplaceURL[i],
			To:   config.ReplaceURL[i+1],
		})
	}
	return filter, nil
}

// BaseURL returns the base url of this filter.
func (filter *Filter) BaseURL() string {
	return filter.baseURL
}

// Replacements returns the replacements of this filter, in order of precedence.
func (filter *Filter) Replacements() []Replacement {
	return append([]Replacement(nil), filter.replacements...)
}

// Report counts the changes made by a single run of the filter.
type Report struct {
	Triples int // triples read

	KeptDatasets         int
	RemovedDatasets      int
	RemovedDistributions int
	RemovedAnonymous     int
	RemovedLocations     int
	MinimizedLocations   int

	ReplacedURLs      int  // access and download urls rewritten
	RewrittenPages    int  // pagination links rewritten
	RenamedCollection bool // paged collection renamed
	AddedDownloadURLs int
}

// Work reads an RDF/XML catalog from in and filters it.
// The input is sanitized before being parsed.
//
// The caller is responsible for closing in, and for closing the returned graph.
// When an error occurs, no graph is returned.
func (filter *Filter) Work(in io.Reader, st *stats.Stats) (*igraph.Graph, Report, error) {
	return filter.WorkSource(&rdfio.XMLSource{Reader: sanitize.NewReader(in)}, st)
}

// WorkSource is like Work, but reads triples from the given source.
func (filter *Filter) WorkSource(source rdfio.Source, st *stats.Stats) (*igraph.Graph, Report, error) {
	var report Report

	engine, err := igraph.NewEngine(filter.cache)
	if err != nil {
		return nil, report, fmt.Errorf("failed to create engine: %w", err)
	}

	g := new(igraph.Graph)
	if err := g.Reset(engine); err != nil {
		if closer, ok := engine.(io.Closer); ok {
			err = errors.Join(err, closer.Close())
		}
		return nil, report, fmt.Errorf("failed to reset graph: %w", err)
	}

	// discard closes the partially built graph after a failure
	discard := func(err error) (*igraph.Graph, Report, error) {
		if cerr := g.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close graph: %w", cerr))
		}
		return nil, report, err
	}

	if err := st.DoStage(stats.StageParse, func() (err error) {
		report.Triples, err = rdfio.Load(source, g)
		st.SetCount(report.Triples)
		return err
	}); err != nil {
		return discard(fmt.Errorf("%w: %w", ErrParse, err))
	}

	if err := filter.Process(g, &report, st); err != nil {
		return discard(err)
	}
	return g, report, nil
}

// Process runs all stages of the filter on an already loaded graph.
// Counts are added to report.
func (filter *Filter) Process(graph *igraph.Graph, report *Report, st *stats.Stats) error {
	defer func() { st.StoreGraphStats(graph.Stats()) }()

	if err := st.DoStage(stats.StagePrune, func() error {
		retained, kept, removed, err := PruneDatasets(graph)
		if err != nil {
			return err
		}
		report.KeptDatasets += kept
		report.RemovedDatasets += removed

		count, err := RemoveUnusedDistributions(graph, retained)
		report.RemovedDistributions += count
		st.SetCount(removed + count)
		return err
	}); err != nil {
		return fmt.Errorf("failed to prune datasets: %w", err)
	}

	if err := st.DoStage(stats.StageSweep, func() error {
		count, err := RemoveAnonymousResources(graph)
		report.RemovedAnonymous += count
		if err != nil {
			return err
		}

		count, err = RemoveUnusedLocations(graph)
		report.RemovedLocations += count
		if err != nil {
			return err
		}

		count, err = MinimizeLocations(graph)
		report.MinimizedLocations += count
		return err
	}); err != nil {
		return fmt.Errorf("failed to sweep unused nodes: %w", err)
	}

	if err := st.DoStage(stats.StageRewriteReplace, func() error {
		count, err := filter.ReplaceURLs(graph)
		report.ReplacedURLs += count
		st.SetCount(count)
		return err
	}); err != nil {
		return fmt.Errorf("failed to replace urls: %w", err)
	}

	if err := st.DoStage(stats.StageRewriteHydra, func() error {
		count, renamed, err := filter.RewriteHydraURLs(graph)
		report.RewrittenPages += count
		report.RenamedCollection = report.RenamedCollection || renamed
		st.SetCount(count)
		return err
	}); err != nil {
		return fmt.Errorf("failed to rewrite pagination: %w", err)
	}

	if err := st.DoStage(stats.StageEnrich, func() error {
		count, err := AddDownloadURLs(graph)
		report.AddedDownloadURLs += count
		st.SetCount(count)
		return err
	}); err != nil {
		return fmt.Errorf("failed to add download urls: %w", err)
	}

	return nil
}
