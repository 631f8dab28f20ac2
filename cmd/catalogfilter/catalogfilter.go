// Command catalogfilter filters a local DCAT catalog file
package main

// cspell:words DCAT nquads

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/FAU-CDI/catalogproxy"
	"github.com/FAU-CDI/catalogproxy/internal/catalog"
	"github.com/FAU-CDI/catalogproxy/internal/rdfio"
	"github.com/FAU-CDI/catalogproxy/internal/sanitize"
	"github.com/FAU-CDI/catalogproxy/internal/stats"
	"github.com/FAU-CDI/catalogproxy/pkg/perf"
	"github.com/FAU-CDI/catalogproxy/pkg/progress"
	"github.com/pkg/profile"
)

func main() {
	flag.Parse()
	nArgs := flag.Args()

	st := stats.NewStats(os.Stderr)

	if debugProfile != "" {
		defer profile.Start(profile.ProfilePath(debugProfile)).Stop()
	}

	path, err := catalogproxy.FindSource(nArgs...)
	if err != nil {
		st.Log("Usage: catalogfilter [-help] [...flags] /path/to/catalog")
		st.LogFatal("find source", err)
	}

	filter, err := catalog.NewFilter(config)
	if err != nil {
		st.LogFatal("invalid configuration", err)
	}
	format, err := rdfio.FormatByName(formatName)
	if err != nil {
		st.LogFatal("invalid format", err)
	}
	if config.Cache != "" {
		st.Log("caching data on-disk", "path", config.Cache)
	}

	if err := run(path, filter, format, st); err != nil {
		st.LogFatal("filter catalog", err)
	}
	st.Log("finished", "took", st.Diff(), "now", perf.Stable())
}

func run(path string, filter *catalog.Filter, format rdfio.Format, st *stats.Stats) (e error) {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	in := &progress.Reader{Reader: file}
	if showProgress {
		in.Rewritable = progress.Rewritable{Writer: os.Stderr, FlushInterval: progress.DefaultFlushInterval}
		if info, err := file.Stat(); err == nil {
			in.Total = info.Size()
		}
	}

	source, err := rdfio.NewSource(path, in)
	if err != nil {
		return err
	}
	if xs, ok := source.(*rdfio.XMLSource); ok {
		xs.Reader = sanitize.NewReader(xs.Reader)
	}

	st.Log("loading catalog", "path", path)
	graph, report, err := filter.WorkSource(source, st)
	in.Close()
	if err != nil {
		return err
	}
	defer func() {
		if err := graph.Close(); err != nil {
			e = errors.Join(e, fmt.Errorf("failed to close graph: %w", err))
		}
	}()

	st.Log("filtered catalog",
		"triples", report.Triples,
		"datasets", report.KeptDatasets,
		"removed datasets", report.RemovedDatasets,
		"removed distributions", report.RemovedDistributions,
		"removed anonymous", report.RemovedAnonymous,
		"removed locations", report.RemovedLocations,
		"minimized locations", report.MinimizedLocations,
		"replaced urls", report.ReplacedURLs,
		"rewritten pages", report.RewrittenPages,
		"added download urls", report.AddedDownloadURLs,
	)

	var out io.Writer = os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := file.Close(); err != nil {
				e = errors.Join(e, err)
			}
		}()
		out = file
	}

	return st.DoStage(stats.StageSerialize, func() error {
		counter := &progress.Writer{Writer: out}
		defer func() { st.SetCount(int(counter.Bytes)) }()

		return format.Write(counter, graph)
	})
}

var config catalog.Config
var formatName = rdfio.RDFXML.Name
var outPath string
var showProgress bool
var debugProfile string

// replaceFlag collects repeated -replace-url flags.
type replaceFlag []string

func (rf *replaceFlag) String() string {
	if rf == nil {
		return ""
	}
	return fmt.Sprint([]string(*rf))
}

func (rf *replaceFlag) Set(value string) error {
	*rf = append(*rf, value)
	return nil
}

func init() {
	flag.StringVar(&config.BaseURL, "base", catalog.DefaultBaseURL, "url to rewrite pagination links to")
	flag.Var((*replaceFlag)(&config.ReplaceURL), "replace-url", "url prefix to replace in access and download urls, followed by its replacement. May be repeated, consumed in pairs")
	flag.StringVar(&config.Cache, "cache", config.Cache, "cache data in the given directory as opposed to memory")
	flag.StringVar(&formatName, "format", formatName, "output format, one of 'rdfxml', 'turtle' or 'ntriples'")
	flag.StringVar(&outPath, "out", outPath, "write output to the given path instead of standard output")
	flag.BoolVar(&showProgress, "progress", showProgress, "show reading progress on standard error")
	flag.StringVar(&debugProfile, "debug-profile", debugProfile, "write out a debugging profile to the given path")
}
