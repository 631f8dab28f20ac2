package proxy_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/catalog"
	"github.com/FAU-CDI/catalogproxy/internal/proxy"
	"github.com/alecthomas/assert/v2"
)

func ExampleUpstreamURL() {
	fmt.Println(proxy.UpstreamURL("https://upstream.example/", proxy.Query{Page: 1}))
	fmt.Println(proxy.UpstreamURL("https://upstream.example/", proxy.Query{
		Page:          5,
		Q:             "my query",
		FQ:            "org:zit",
		ModifiedSince: "2022-02-07",
	}))
	fmt.Println(proxy.UpstreamURL("https://upstream.example/", proxy.Query{Page: 2, Q: "  ", FQ: "res_format:CSV"}))

	// Output: https://upstream.example/catalog.xml?page=1
	// https://upstream.example/catalog.xml?page=5&modified_since=2022-02-07&q=my+query&fq=org%3Azit
	// https://upstream.example/catalog.xml?page=2&fq=res_format%3ACSV
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		raw     string
		want    proxy.Query
		wantErr bool
	}{
		{"", proxy.Query{Page: 1}, false},
		{"page=7&q=bus", proxy.Query{Page: 7, Q: "bus"}, false},
		{"page=3&fq=org:zit&modified_since=2022-02-07", proxy.Query{Page: 3, FQ: "org:zit", ModifiedSince: "2022-02-07"}, false},
		{"page=", proxy.Query{Page: 1}, false},
		{"page=two", proxy.Query{}, true},
	} {
		values, err := url.ParseQuery(tt.raw)
		assert.NoError(t, err)

		got, err := proxy.ParseQuery(values)
		if tt.wantErr {
			assert.Error(t, err, "ParseQuery(%q)", tt.raw)
			continue
		}
		assert.NoError(t, err, "ParseQuery(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "ParseQuery(%q)", tt.raw)
	}
}

// page is an upstream catalog page, formatted with the url of the upstream server.
const page = `<?xml version="1.0" encoding="utf-8"?>
<rdf:RDF
    xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
    xmlns:dcat="http://www.w3.org/ns/dcat#"
    xmlns:dct="http://purl.org/dc/terms/"
    xmlns:hydra="http://www.w3.org/ns/hydra/core#">
  <dcat:Catalog rdf:about="%[1]s/">
    <dcat:dataset rdf:resource="%[1]s/dataset/counts"/>
    <dcat:dataset rdf:resource="%[1]s/dataset/reports"/>
  </dcat:Catalog>
  <dcat:Dataset rdf:about="%[1]s/dataset/counts">
    <dct:title>Traffic counts in the Hauptstraße</dct:title>
    <dcat:distribution rdf:resource="%[1]s/dist/counts"/>
  </dcat:Dataset>
  <dcat:Dataset rdf:about="%[1]s/dataset/reports">
    <dct:title>Annual reports</dct:title>
    <dcat:distribution rdf:resource="%[1]s/dist/reports"/>
  </dcat:Dataset>
  <dcat:Distribution rdf:about="%[1]s/dist/counts">
    <dct:format rdf:resource="http://publications.europa.eu/resource/authority/file-type/CSV"/>
    <dcat:accessURL rdf:resource="http://10.0.0.1/counts.csv?year=2012&month=1"/>
  </dcat:Distribution>
  <dcat:Distribution rdf:about="%[1]s/dist/reports">
    <dct:format rdf:resource="http://publications.europa.eu/resource/authority/file-type/PDF"/>
    <dcat:accessURL rdf:resource="http://10.0.0.1/reports.pdf"/>
  </dcat:Distribution>
  <hydra:PagedCollection rdf:about="%[1]s/catalog.xml?page=2">
    <hydra:nextPage>%[1]s/catalog.xml?page=3</hydra:nextPage>
    <hydra:lastPage>%[1]s/catalog.xml?page=84</hydra:lastPage>
  </hydra:PagedCollection>
</rdf:RDF>
`

const base = "https://proxy.example/"

// newProxy starts an upstream server using handler, and returns a new proxy server in front of it.
func newProxy(t *testing.T, handler http.HandlerFunc) (*proxy.Proxy, *httptest.Server) {
	t.Helper()

	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	filter, err := catalog.NewFilter(catalog.Config{
		BaseURL:    base,
		ReplaceURL: []string{"http://10.0.0.1/", "https://files.example/"},
	})
	if err != nil {
		t.Fatal(err)
	}

	p := &proxy.Proxy{
		Filter: filter,
		Remote: upstream.URL + "/",
		Client: upstream.Client(),
	}

	server := httptest.NewServer(p)
	t.Cleanup(server.Close)

	return p, server
}

// servePage serves the catalog page, and records the query it was requested with.
func servePage(contentType string, encode func(string) []byte, query *url.Values) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.xml" {
			http.NotFound(w, r)
			return
		}
		if query != nil {
			*query = r.URL.Query()
		}

		upstream := "http://" + r.Host
		w.Header().Set("Content-Type", contentType)
		w.Write(encode(fmt.Sprintf(page, upstream)))
	}
}

func utf8(s string) []byte { return []byte(s) }

func latin1(s string) []byte {
	s = strings.Replace(s, `encoding="utf-8"`, `encoding="ISO-8859-1"`, 1)

	result := make([]byte, 0, len(s))
	for _, r := range s {
		result = append(result, byte(r))
	}
	return result
}

func get(t *testing.T, server *httptest.Server, path string, header http.Header) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	assert.NoError(t, err)
	for key, values := range header {
		req.Header[key] = values
	}

	res, err := server.Client().Do(req)
	assert.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	return res, string(body)
}

func TestProxy_catalog(t *testing.T) {
	t.Parallel()

	var query url.Values
	p, server := newProxy(t, servePage("application/xml", utf8, &query))

	res, body := get(t, server, "/catalog.xml?page=2&q=traffic+counts&fq=org:zit&modified_since=", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/rdf+xml; charset=utf-8", res.Header.Get("Content-Type"))

	assert.Equal(t, url.Values{
		"page": {"2"},
		"q":    {"traffic counts"},
		"fq":   {"org:zit"},
	}, query)

	assert.Contains(t, body, "Traffic counts in the Hauptstraße")
	assert.NotContains(t, body, "Annual reports")
	assert.NotContains(t, body, "/dist/reports")
	assert.Contains(t, body, `rdf:about="`+base+`catalog.xml?page=2"`)
	assert.Contains(t, body, base+"catalog.xml?page=3")
	assert.Contains(t, body, base+"catalog.xml?page=84")
	assert.Contains(t, body, "https://files.example/counts.csv?year=2012&amp;month=1")

	assert.Equal(t, proxy.Counters{
		Requests:             1,
		RemovedDatasets:      1,
		RemovedDistributions: 1,
		ReplacedURLs:         1,
		RewrittenPages:       2,
		AddedDownloadURLs:    1,
	}, p.Counters())

	res, body = get(t, server, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var counters proxy.Counters
	assert.NoError(t, json.Unmarshal([]byte(body), &counters))
	assert.Equal(t, p.Counters(), counters)
}

func TestProxy_format(t *testing.T) {
	t.Parallel()

	_, server := newProxy(t, servePage("application/xml", utf8, nil))

	for _, tt := range []struct {
		path        string
		accept      string
		contentType string
		contains    string
	}{
		{"/catalog.xml", "", "application/rdf+xml; charset=utf-8", "<rdf:RDF"},
		{"/catalog.xml", "text/html, */*", "application/rdf+xml; charset=utf-8", "<rdf:RDF"},
		{"/catalog.xml", "text/turtle", "text/turtle; charset=utf-8", "<" + base + "catalog.xml?page=2>"},
		{"/catalog.xml?format=ntriples", "text/turtle", "application/n-triples; charset=utf-8", "<" + base + "catalog.xml?page=2>"},
	} {
		header := http.Header{}
		if tt.accept != "" {
			header.Set("Accept", tt.accept)
		}

		res, body := get(t, server, tt.path, header)
		assert.Equal(t, http.StatusOK, res.StatusCode, "%s (Accept: %q)", tt.path, tt.accept)
		assert.Equal(t, tt.contentType, res.Header.Get("Content-Type"), "%s (Accept: %q)", tt.path, tt.accept)
		assert.Contains(t, body, tt.contains, "%s (Accept: %q)", tt.path, tt.accept)
	}
}

func TestProxy_charset(t *testing.T) {
	t.Parallel()

	_, server := newProxy(t, servePage("application/rdf+xml; charset=iso-8859-1", latin1, nil))

	res, body := get(t, server, "/catalog.xml", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Traffic counts in the Hauptstraße")
}

func TestProxy_errors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		handler http.HandlerFunc
		path    string
		want    int
	}{
		{
			name: "upstream failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "broken", http.StatusInternalServerError)
			},
			path: "/catalog.xml",
			want: http.StatusBadGateway,
		},
		{
			name: "upstream not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			path: "/catalog.xml?page=1000",
			want: http.StatusBadGateway,
		},
		{
			name: "invalid upstream content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/xml")
				io.WriteString(w, `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description`)
			},
			path: "/catalog.xml",
			want: http.StatusBadGateway,
		},
		{
			name:    "invalid page",
			handler: servePage("application/xml", utf8, nil),
			path:    "/catalog.xml?page=first",
			want:    http.StatusBadRequest,
		},
		{
			name:    "unknown format",
			handler: servePage("application/xml", utf8, nil),
			path:    "/catalog.xml?format=json",
			want:    http.StatusNotAcceptable,
		},
		{
			name:    "unknown route",
			handler: servePage("application/xml", utf8, nil),
			path:    "/dataset.xml",
			want:    http.StatusNotFound,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, server := newProxy(t, tt.handler)

			res, _ := get(t, server, tt.path, nil)
			assert.Equal(t, tt.want, res.StatusCode)

			if tt.want != http.StatusNotFound {
				counters := p.Counters()
				assert.Equal(t, int64(1), counters.Requests)
				assert.Equal(t, int64(1), counters.Failures)
			}
		})
	}
}
