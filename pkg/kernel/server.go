package kernel

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/manthysbr/scribe/internal/core/ports"
	"github.com/manthysbr/scribe/internal/core/services"
)

const defaultMaxUploadBytes = 100 << 20

type Server struct {
	logger     *slog.Logger
	registry   *services.JobRegistry
	dispatcher *services.Dispatcher
	ingress    *services.CallbackIngress
	status     *services.StatusQuery
	uploader   *services.Uploader
	journal    ports.Journal // optional
	apiDoc     []byte

	maxUploadBytes int64
}

func NewServer(
	logger *slog.Logger,
	registry *services.JobRegistry,
	dispatcher *services.Dispatcher,
	ingress *services.CallbackIngress,
	status *services.StatusQuery,
	uploader *services.Uploader,
) (*Server, error) {
	doc, err := LoadAPIDoc()
	if err != nil {
		return nil, err
	}
	apiDoc, err := renderAPIDoc(doc)
	if err != nil {
		return nil, err
	}

	return &Server{
		logger:         logger,
		registry:       registry,
		dispatcher:     dispatcher,
		ingress:        ingress,
		status:         status,
		uploader:       uploader,
		apiDoc:         apiDoc,
		maxUploadBytes: defaultMaxUploadBytes,
	}, nil
}

// SetJournal exposes the traffic journal on /v1/events.
func (s *Server) SetJournal(j ports.Journal) {
	s.journal = j
}

// SetMaxUploadBytes caps multipart upload bodies.
func (s *Server) SetMaxUploadBytes(n int64) {
	if n > 0 {
		s.maxUploadBytes = n
	}
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/upload", s.handleUpload)
	mux.HandleFunc("POST /v1/process", s.handleProcess)
	mux.HandleFunc("POST /v1/process/{filename}", s.handleProcessFile)
	mux.HandleFunc("POST /v1/callback", s.handleCallback)
	mux.HandleFunc("POST /v1/callback/{processId}", s.handleCallbackForProcess)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	mux.HandleFunc("GET /v1/openapi.json", s.handleAPIDoc)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

// handleHealth reports liveness and the tracked jobs per status.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts := s.registry.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"jobs":           total,
		"jobs_by_status": counts,
	})
}

// GET /v1/openapi.json
func (s *Server) handleAPIDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.apiDoc)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
