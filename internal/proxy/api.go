package proxy

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/FAU-CDI/catalogproxy/internal/catalog"
)

// Counters holds statistics about all requests served by a proxy.
type Counters struct {
	Requests int64 `json:"requests"`
	Failures int64 `json:"failures"`

	RemovedDatasets      int64 `json:"removedDatasets"`
	RemovedDistributions int64 `json:"removedDistributions"`
	RemovedAnonymous     int64 `json:"removedAnonymous"`
	RemovedLocations     int64 `json:"removedLocations"`
	ReplacedURLs         int64 `json:"replacedURLs"`
	RewrittenPages       int64 `json:"rewrittenPages"`
	AddedDownloadURLs    int64 `json:"addedDownloadURLs"`
}

type counters struct {
	Requests atomic.Int64
	Failures atomic.Int64

	RemovedDatasets      atomic.Int64
	RemovedDistributions atomic.Int64
	RemovedAnonymous     atomic.Int64
	RemovedLocations     atomic.Int64
	ReplacedURLs         atomic.Int64
	RewrittenPages       atomic.Int64
	AddedDownloadURLs    atomic.Int64
}

func (c *counters) record(report catalog.Report) {
	c.RemovedDatasets.Add(int64(report.RemovedDatasets))
	c.RemovedDistributions.Add(int64(report.RemovedDistributions))
	c.RemovedAnonymous.Add(int64(report.RemovedAnonymous))
	c.RemovedLocations.Add(int64(report.RemovedLocations))
	c.ReplacedURLs.Add(int64(report.ReplacedURLs))
	c.RewrittenPages.Add(int64(report.RewrittenPages))
	c.AddedDownloadURLs.Add(int64(report.AddedDownloadURLs))
}

// Counters returns a snapshot of the counters of this proxy.
func (proxy *Proxy) Counters() Counters {
	c := &proxy.counters
	return Counters{
		Requests:             c.Requests.Load(),
		Failures:             c.Failures.Load(),
		RemovedDatasets:      c.RemovedDatasets.Load(),
		RemovedDistributions: c.RemovedDistributions.Load(),
		RemovedAnonymous:     c.RemovedAnonymous.Load(),
		RemovedLocations:     c.RemovedLocations.Load(),
		ReplacedURLs:         c.ReplacedURLs.Load(),
		RewrittenPages:       c.RewrittenPages.Load(),
		AddedDownloadURLs:    c.AddedDownloadURLs.Load(),
	}
}

func (proxy *Proxy) jsonStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(proxy.Counters())
}
