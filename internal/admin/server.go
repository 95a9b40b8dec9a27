package admin

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lorastat-sim/internal/sim"
	"lorastat-sim/internal/stats"
)

// Server exposes the running study over HTTP for live monitoring.
type Server struct {
	sim atomic.Pointer[sim.Simulator]
	mux *http.ServeMux
	reg *prometheus.Registry
}

// NewServer builds the monitor around a simulator. A nil registry gets a
// fresh one.
func NewServer(simulator *sim.Simulator, reg *prometheus.Registry) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		mux: http.NewServeMux(),
		reg: reg,
	}
	s.sim.Store(simulator)
	s.routes()
	return s
}

// SetSim swaps the simulator the handlers read from. Handlers may be serving
// concurrently, so the pointer is stored atomically.
func (s *Server) SetSim(simulator *sim.Simulator) {
	s.sim.Store(simulator)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/summary", s.handleSummary)
	s.mux.HandleFunc("/hourly", s.handleHourly)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
}

// Registry exposes the server's metrics registry so event collectors can
// register there.
func (s *Server) Registry() *prometheus.Registry { return s.reg }

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// ServeHTTP lets the server be used directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.sim.Load().Tracker().SnapshotNow())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.sim.Load().Tracker().FinalSummary())
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	samples := s.sim.Load().Tracker().HourlySamples()
	if samples == nil {
		samples = []stats.HourlySample{}
	}
	json.NewEncoder(w).Encode(samples)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "run_id": s.sim.Load().RunID})
}
