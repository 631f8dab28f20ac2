package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/FAU-CDI/catalogproxy/internal/catalog"
	"github.com/FAU-CDI/catalogproxy/internal/rdfio"
	"github.com/FAU-CDI/catalogproxy/internal/sanitize"
	"github.com/FAU-CDI/catalogproxy/internal/stats"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/pkg/progress"
)

const catalogPath = "catalog.xml"

// ErrUpstreamStatus indicates that the upstream server did not respond with success.
var ErrUpstreamStatus = errors.New("upstream server returned an unexpected status")

// Query holds the parameters of a catalog request.
type Query struct {
	Page          int
	Q             string
	FQ            string
	ModifiedSince string
}

var errInvalidPage = errors.New("page must be an integer")

// ParseQuery reads a query from the given url parameters.
// When page is missing, it defaults to 1.
func ParseQuery(values url.Values) (query Query, err error) {
	query.Page = 1
	if page := strings.TrimSpace(values.Get("page")); page != "" {
		query.Page, err = strconv.Atoi(page)
		if err != nil {
			return query, fmt.Errorf("%w: %q", errInvalidPage, page)
		}
	}

	query.Q = values.Get("q")
	query.FQ = values.Get("fq")
	query.ModifiedSince = values.Get("modified_since")
	return query, nil
}

// UpstreamURL returns the url to fetch query from the given remote.
// Blank parameters are omitted.
func UpstreamURL(remote string, query Query) string {
	var builder strings.Builder
	builder.WriteString(remote)
	builder.WriteString(catalogPath)
	builder.WriteString("?page=")
	builder.WriteString(strconv.Itoa(query.Page))

	for _, param := range []struct{ name, value string }{
		{"modified_since", query.ModifiedSince},
		{"q", query.Q},
		{"fq", query.FQ},
	} {
		if strings.TrimSpace(param.value) == "" {
			continue
		}
		builder.WriteString("&")
		builder.WriteString(param.name)
		builder.WriteString("=")
		builder.WriteString(url.QueryEscape(param.value))
	}

	return builder.String()
}

func (proxy *Proxy) serveCatalog(w http.ResponseWriter, r *http.Request) {
	proxy.counters.Requests.Add(1)

	query, err := ParseQuery(r.URL.Query())
	if err != nil {
		proxy.counters.Failures.Add(1)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := rdfio.Negotiate(r.Header.Get("Accept"))
	if name := r.URL.Query().Get("format"); name != "" {
		format, err = rdfio.FormatByName(name)
		if err != nil {
			proxy.counters.Failures.Add(1)
			http.Error(w, err.Error(), http.StatusNotAcceptable)
			return
		}
	}

	logger := proxy.Logger
	if logger != nil {
		logger = logger.With("page", query.Page)
	}
	st := stats.NewStatsWithLogger(logger)

	graph, report, err := proxy.fetch(r.Context(), UpstreamURL(proxy.Remote, query), st)
	if err != nil {
		proxy.counters.Failures.Add(1)
		st.LogError("filter catalog", err)

		code := statusCode(err)
		http.Error(w, http.StatusText(code), code)
		return
	}
	defer func() {
		if err := graph.Close(); err != nil {
			st.LogError("close graph", err)
		}
	}()
	proxy.counters.record(report)

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	// the status has been sent, so failures can only be logged
	counter := &progress.Writer{Writer: w}
	if err := st.DoStage(stats.StageSerialize, func() error {
		defer func() { st.SetCount(int(counter.Bytes)) }()
		return format.Write(counter, graph)
	}); err != nil {
		proxy.counters.Failures.Add(1)
		st.LogError("write catalog", err)
		return
	}

	st.Log("served catalog", slog.Group("report",
		"triples", report.Triples,
		"datasets", report.KeptDatasets,
		"removed", report.RemovedDatasets,
	), "bytes", counter.Bytes, "took", st.Diff())
}

// statusCode returns the http status to respond with when filtering failed with err.
func statusCode(err error) int {
	var transport *url.Error
	switch {
	case errors.Is(err, ErrUpstreamStatus), errors.Is(err, catalog.ErrParse), errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fetch retrieves and filters the catalog at the given url.
func (proxy *Proxy) fetch(ctx context.Context, target string, st *stats.Stats) (graph *igraph.Graph, report catalog.Report, err error) {
	var body io.ReadCloser
	var contentType string
	if err := st.DoStage(stats.StageFetch, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", rdfio.RDFXML.MediaType+", application/xml;q=0.9")

		res, err := proxy.Client.Do(req)
		if err != nil {
			return err
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			res.Body.Close()
			return fmt.Errorf("%w: %s", ErrUpstreamStatus, res.Status)
		}

		body = res.Body
		contentType = res.Header.Get("Content-Type")
		return nil
	}); err != nil {
		return nil, report, fmt.Errorf("failed to fetch %q: %w", target, err)
	}
	defer body.Close()

	in, err := sanitize.NewTranscodingReader(body, contentType)
	if err != nil {
		return nil, report, fmt.Errorf("%w: %w", catalog.ErrParse, err)
	}

	return proxy.Filter.WorkSource(&rdfio.XMLSource{Reader: in}, st)
}
