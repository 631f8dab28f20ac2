// Command catalogproxy serves a filtered view of a DCAT catalog server
package main

// cspell:words DCAT

import (
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/FAU-CDI/catalogproxy/internal/catalog"
	"github.com/FAU-CDI/catalogproxy/internal/proxy"
	"github.com/FAU-CDI/catalogproxy/internal/stats"
	"github.com/FAU-CDI/catalogproxy/pkg/perf"
)

var st = stats.NewStatsWithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level})))

func main() {
	flag.Parse()
	nArgs := flag.Args()
	if debug {
		level.Set(slog.LevelDebug)
	}

	if len(nArgs) != 0 {
		st.Log("Usage: catalogproxy [-help] [...flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// validate the configuration before listening
	filter, err := catalog.NewFilter(config)
	if err != nil {
		st.LogFatal("invalid configuration", err)
	}
	if config.Cache != "" {
		st.Log("caching graphs on-disk", "path", config.Cache)
	}

	handler := &proxy.Proxy{
		Filter: filter,
		Remote: remote,
		Client: &http.Client{Timeout: timeout},
		Logger: st.Logger(),
	}
	handler.Prepare()

	if debugServer != "" {
		go listenDebug(handler)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		st.LogFatal("listen", err)
	}
	st.Log("listen", "addr", listener.Addr().String(), "remote", handler.Remote, "base", filter.BaseURL(), "replacements", len(filter.Replacements()), "now", perf.Now())

	server := http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err = server.Serve(listener)
	st.LogFatal("serve", err)
}

// replaceFlag collects repeated -replace-url flags.
type replaceFlag []string

func (rf *replaceFlag) String() string {
	if rf == nil {
		return ""
	}
	return strings.Join(*rf, " ")
}

func (rf *replaceFlag) Set(value string) error {
	*rf = append(*rf, value)
	return nil
}

var addr = ":8080"
var remote = proxy.DefaultRemote
var timeout = proxy.DefaultTimeout
var config = catalog.Config{BaseURL: catalog.DefaultBaseURL}
var debugServer string
var level slog.LevelVar
var debug bool

func init() {
	flag.StringVar(&addr, "addr", addr, "address to listen on")
	flag.StringVar(&remote, "remote", remote, "url of the upstream catalog server, ending in a slash")
	flag.StringVar(&config.BaseURL, "base", config.BaseURL, "public url of this proxy, used to rewrite pagination links")
	flag.Var((*replaceFlag)(&config.ReplaceURL), "replace-url", "url prefix to replace in access and download urls, followed by its replacement. May be repeated, consumed in pairs")
	flag.StringVar(&config.Cache, "cache", config.Cache, "while filtering, cache graphs in the given directory as opposed to memory")
	flag.DurationVar(&timeout, "timeout", timeout, "timeout for fetching a page from the upstream server")
	flag.StringVar(&debugServer, "debug-listen", debugServer, "start a profiling server on the given address")
	flag.BoolVar(&debug, "debug", debug, "log the individual stages of every request")
}
