package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/app/simulation"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

// JSONError is json error massage
type JSONError struct {
	Error string `json:"error"`
}

func errorAPI(w http.ResponseWriter, message string, code int) {
	jsonMessage, err := json.Marshal(JSONError{Error: message})
	if err != nil {
		logrus.Warnf("error message create error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonMessage)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	js, err := json.Marshal(v)
	if err != nil {
		logrus.Warnf("response json error: %v", err)
		errorAPI(w, "response json error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}

// Server owns the HTTP surface. Collaborators are passed in at
// construction rather than reached through globals, so tests can wire
// their own providers.
type Server struct {
	prices      *stock.Cache
	universe    stock.UniverseProvider
	store       *models.Store
	eventBuffer int
}

// NewServer is constructor of Server; store may be nil to skip run history.
func NewServer(prices *stock.Cache, universe stock.UniverseProvider, store *models.Store, eventBuffer int) *Server {
	return &Server{prices: prices, universe: universe, store: store, eventBuffer: eventBuffer}
}

// Mux registers every handler and returns the mux.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/backtest", s.BacktestAPIHandler)
	mux.HandleFunc("/simulate", s.SimulateWSHandler)
	mux.HandleFunc("/runs", s.RunsAPIHandler)
	return mux
}

// Run starts webserver
func (s *Server) Run(addr string) {
	logrus.Infof("server start: %s", addr)
	logrus.Fatalln(http.ListenAndServe(addr, s.Mux()))
}

// BacktestAPIHandler executes one simulation synchronously and returns the
// final summary, when path is "/backtest"
func (s *Server) BacktestAPIHandler(w http.ResponseWriter, req *http.Request) {
	logrus.Info("backtest request")

	var request simulation.Request
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		logrus.Warnf("backtest params error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest params error: %v", err), http.StatusBadRequest)
		return
	}

	params, err := request.Validate()
	if err != nil {
		logrus.Warnf("backtest validation error: %v", err)
		errorAPI(w, err.Error(), http.StatusBadRequest)
		return
	}

	driver, err := simulation.NewDriver(params, s.prices, s.universe, s.store, s.eventBuffer)
	if err != nil {
		errorAPI(w, err.Error(), http.StatusBadRequest)
		return
	}

	go driver.Run(req.Context())

	// drain the stream; the terminal event decides the response
	for event := range driver.Events() {
		switch event.Type {
		case simulation.EventDone:
			writeJSON(w, event.Summary)
			return
		case simulation.EventError:
			errorAPI(w, event.Message, http.StatusUnprocessableEntity)
			return
		}
	}

	// stream closed without a terminal event: the caller went away
	errorAPI(w, "simulation cancelled", http.StatusInternalServerError)
}

// RunsAPIHandler returns persisted run history, when path is "/runs".
// With an id query parameter one run is returned with trades and daily
// values attached.
func (s *Server) RunsAPIHandler(w http.ResponseWriter, req *http.Request) {
	if s.store == nil {
		errorAPI(w, "run history disabled", http.StatusNotFound)
		return
	}

	if id := req.URL.Query().Get("id"); id != "" {
		run, err := s.store.GetRun(id)
		if err != nil {
			errorAPI(w, fmt.Sprintf("run not found: %v", id), http.StatusNotFound)
			return
		}
		writeJSON(w, run)
		return
	}

	runs, err := s.store.ListRuns()
	if err != nil {
		logrus.Warnf("run list error: %v", err)
		errorAPI(w, "run list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}
