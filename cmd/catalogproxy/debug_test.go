package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/proxy"
	"github.com/alecthomas/assert/v2"
)

func TestDebugRouter(t *testing.T) {
	router := newDebugRouter(&proxy.Proxy{})

	for _, tt := range []struct {
		path     string
		code     int
		contains string
	}{
		{"/debug/pprof/", http.StatusOK, "goroutine"},
		{"/debug/pprof/heap?debug=1", http.StatusOK, "heap profile"},
		{"/debug/counters", http.StatusOK, `"requests":0`},
		{"/catalog.xml", http.StatusNotFound, ""},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		assert.Equal(t, tt.code, rec.Code, tt.path)
		assert.True(t, strings.Contains(rec.Body.String(), tt.contains), tt.path)
	}
}

func TestReplaceFlag(t *testing.T) {
	var urls []string
	rf := (*replaceFlag)(&urls)

	assert.NoError(t, rf.Set("http://internal/"))
	assert.NoError(t, rf.Set("https://public.example/"))
	assert.Equal(t, []string{"http://internal/", "https://public.example/"}, urls)
	assert.Equal(t, "http://internal/ https://public.example/", rf.String())
}
