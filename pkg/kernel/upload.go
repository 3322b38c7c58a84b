package kernel

import (
	"errors"
	"net/http"

	"github.com/manthysbr/scribe/internal/core/domain"
)

// handleUpload stores a multipart file ahead of processing.
// POST /v1/upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to upload file")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to upload file")
		return
	}
	defer file.Close()

	obj, err := s.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Filename is missing")
			return
		}
		s.logger.Error("failed to upload file", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "File uploaded successfully",
		"filename": obj.Filename,
		"location": obj.Location,
	})
}
