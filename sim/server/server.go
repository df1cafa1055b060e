// Package server exposes run results over an HTTP JSON API for dashboards and
// chart renderers.
package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/energy-sched/sim/record"
	"github.com/inference-sim/energy-sched/sim/report"
	"github.com/inference-sim/energy-sched/sim/timeline"
)

// RunLister lists runs persisted outside the server, e.g. in a SQLite recording.
type RunLister interface {
	Runs() ([]record.RunSummary, error)
}

// Server serves in-memory result documents and, optionally, stored run summaries.
type Server struct {
	docs   []*report.ResultDocument
	byID   map[string]*report.ResultDocument
	stored RunLister
}

// New creates a Server over docs. stored may be nil.
func New(docs []*report.ResultDocument, stored RunLister) *Server {
	s := &Server{byID: make(map[string]*report.ResultDocument), stored: stored}
	for _, d := range docs {
		s.Add(d)
	}
	return s
}

// Add registers another result document.
func (s *Server) Add(doc *report.ResultDocument) {
	s.docs = append(s.docs, doc)
	s.byID[doc.RunID] = doc
}

// AttachStored sets the source listed under /api/stored.
func (s *Server) AttachStored(stored RunLister) {
	s.stored = stored
}

// Router builds the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/runs", s.listRuns).Methods(http.MethodGet)
	r.HandleFunc("/api/stored", s.listStored).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}", s.getRun).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}/metrics", s.getMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}/finished", s.getFinished).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}/timeline", s.getTimeline).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}/summary", s.getSummary).Methods(http.MethodGet)
	return r
}

// Listen opens a TCP listener on port (0 picks a free one) and returns the
// base URL it serves.
func Listen(port int) (net.Listener, string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, "", fmt.Errorf("listening on port %d: %w", port, err)
	}
	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Serving results at %s/api/runs\n", url)
	return listener, url, nil
}

// Serve blocks serving the API on listener.
func (s *Server) Serve(listener net.Listener) error {
	return http.Serve(listener, s.Router())
}

type runEntry struct {
	RunID          string `json:"run_id"`
	SleepThreshold int64  `json:"sleep_threshold"`
	Policy         string `json:"policy"`
	ProcessCount   int    `json:"process_count"`
}

func (s *Server) listRuns(w http.ResponseWriter, _ *http.Request) {
	entries := make([]runEntry, 0, len(s.docs))
	for _, d := range s.docs {
		entries = append(entries, runEntry{
			RunID:          d.RunID,
			SleepThreshold: d.Config.SleepThreshold,
			Policy:         d.Config.Policy,
			ProcessCount:   d.Result.Metrics.ProcessCount,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) listStored(w http.ResponseWriter, _ *http.Request) {
	if s.stored == nil {
		writeError(w, http.StatusNotFound, "no recording attached")
		return
	}
	runs, err := s.stored.Runs()
	if err != nil {
		logrus.Errorf("listing stored runs: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*report.ResultDocument, bool) {
	id := mux.Vars(r)["id"]
	doc, ok := s.byID[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %q not found", id))
	}
	return doc, ok
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if doc, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	if doc, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, doc.Result.Metrics)
	}
}

func (s *Server) getFinished(w http.ResponseWriter, r *http.Request) {
	if doc, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, doc.Result.Finished)
	}
}

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request) {
	if doc, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, doc.Result.Timeline)
	}
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	if doc, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, timeline.Summarize(doc.Result.Timeline))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
