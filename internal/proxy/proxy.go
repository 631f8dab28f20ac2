// Package proxy implements an http front end that serves filtered catalogs.
package proxy

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/FAU-CDI/catalogproxy/internal/catalog"
	"github.com/gorilla/mux"
)

// cspell:words DCAT

// DefaultRemote is the default upstream catalog server.
const DefaultRemote = "https://opendata.schleswig-holstein.de/"

// DefaultTimeout is the default timeout for fetching a page from the upstream server.
const DefaultTimeout = time.Minute

// Proxy implements an [http.Handler] that fetches DCAT catalog pages from an upstream server,
// filters them and serves the result.
//
// The zero value is not ready for use, a Filter must be set.
type Proxy struct {
	Filter *catalog.Filter

	// Remote is the url of the upstream server, ending in a slash.
	// Defaults to [DefaultRemote].
	Remote string

	// Client is used to make requests to the upstream server.
	// When nil, a client with a timeout of [DefaultTimeout] is used.
	Client *http.Client

	// Logger receives logs about requests, may be nil.
	Logger *slog.Logger

	counters counters

	init sync.Once
	mux  mux.Router
}

func (proxy *Proxy) Prepare() {
	proxy.init.Do(func() {
		if proxy.Remote == "" {
			proxy.Remote = DefaultRemote
		}
		if proxy.Client == nil {
			proxy.Client = &http.Client{Timeout: DefaultTimeout}
		}

		proxy.mux.HandleFunc("/"+catalogPath, proxy.serveCatalog).Methods(http.MethodGet, http.MethodHead)
		proxy.mux.HandleFunc("/api/v1/stats", proxy.jsonStats).Methods(http.MethodGet)
	})
}

func (proxy *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.Prepare()
	proxy.mux.ServeHTTP(w, r)
}
