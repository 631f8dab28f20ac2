package main

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/FAU-CDI/catalogproxy/internal/proxy"
	"github.com/gorilla/mux"
)

// newDebugRouter returns a router serving profiles and the counters of handler.
func newDebugRouter(handler *proxy.Proxy) *mux.Router {
	router := mux.NewRouter()

	sub := router.PathPrefix("/debug").Subrouter()
	sub.HandleFunc("/pprof/", pprof.Index)
	sub.HandleFunc("/pprof/cmdline", pprof.Cmdline)
	sub.HandleFunc("/pprof/profile", pprof.Profile)
	sub.HandleFunc("/pprof/symbol", pprof.Symbol)
	sub.HandleFunc("/pprof/trace", pprof.Trace)
	sub.HandleFunc("/pprof/{cmd}", pprof.Index) // named profiles, e.g. heap

	sub.HandleFunc("/counters", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(handler.Counters())
	})

	return router
}

func listenDebug(handler *proxy.Proxy) {
	st.Log("debug server listening", "addr", debugServer)

	server := http.Server{
		Addr:              debugServer,
		Handler:           newDebugRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := server.ListenAndServe()

	st.LogFatal("pprof server listen", err)
}
