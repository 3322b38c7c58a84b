package kernel

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/oapi-codegen/runtime"
)

const (
	maxProcessBytes  = 1 << 20
	maxCallbackBytes = 10 << 20
)

type processRequest struct {
	Filename string `json:"filename"`
	Location string `json:"location"`
}

// handleProcess registers a job and starts the transcription workflow.
// POST /v1/process
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	body := http.MaxBytesReader(w, r.Body, maxProcessBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reference := req.Location
	if reference == "" && req.Filename != "" {
		reference = s.uploader.Reference(req.Filename)
	}
	s.dispatch(w, r, reference)
}

// handleProcessFile is the path form of handleProcess for an uploaded file.
// POST /v1/process/{filename}
func (s *Server) handleProcessFile(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, s.uploader.Reference(r.PathValue("filename")))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, reference string) {
	jobID, err := s.dispatcher.Dispatch(r.Context(), reference)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"message":   "Processing started",
			"processId": string(jobID),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Filename is missing")
	case errors.Is(err, domain.ErrUpstreamDispatch):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":     "Error initiating processing: " + err.Error(),
			"processId": string(jobID),
		})
	default:
		s.logger.Error("failed to dispatch job", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dispatch job")
	}
}

// handleCallback receives a completion notification correlated by execution name.
// It always acknowledges so the engine never retries into a failure loop.
// POST /v1/callback
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	data, payload := s.readCallback(r)
	if payload != nil {
		s.ingress.Ingest(r.Context(), payload)
	}
	writeCallbackAck(w, data)
}

// handleCallbackForProcess takes the job id from the path instead of the body.
// POST /v1/callback/{processId}
// The mux has already unescaped the path value.
func (s *Server) handleCallbackForProcess(w http.ResponseWriter, r *http.Request) {
	processID := r.PathValue("processId")

	data, payload := s.readCallback(r)
	if payload != nil {
		s.ingress.IngestFor(r.Context(), domain.JobID(processID), payload)
	}
	writeCallbackAck(w, data)
}

// readCallback decodes the body. data is echoed back verbatim; payload is only
// set when the body is a JSON object.
func (s *Server) readCallback(r *http.Request) (interface{}, domain.Payload) {
	var data interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCallbackBytes)).Decode(&data); err != nil {
		s.logger.Warn("malformed callback body", "error", err)
		return nil, nil
	}
	obj, ok := data.(map[string]interface{})
	if !ok {
		s.logger.Warn("callback body is not an object")
		return data, nil
	}
	return data, domain.Payload(obj)
}

func writeCallbackAck(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// handleStatus reports whether a job has completed. Unknown ids read as pending.
// process_id is accepted as an alias of processId.
// GET /v1/status?processId=
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var processID string
	for _, name := range []string{"processId", "process_id"} {
		if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &processID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+name+": "+err.Error())
			return
		}
		if processID != "" {
			break
		}
	}

	view := s.status.Status(domain.JobID(processID))
	resp := map[string]interface{}{"complete": view.Complete}
	if view.Complete {
		resp["result"] = view.Result
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListEvents returns the most recent journal entries.
// GET /v1/events?limit=
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}

	limit := 50
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}
	if limit < 1 || limit > 1000 {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
		return
	}

	events, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read journal", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []domain.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
