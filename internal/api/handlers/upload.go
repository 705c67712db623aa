package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/harukisan/fixed-points-backend/internal/config"
)

const maxUploadBytes = 10 << 20 // 10 MB

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UploadHandler struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewUploadHandler(cfg *config.Config, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{cfg: cfg, logger: logger}
}

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Image accepts a multipart image upload and stores it under a random
// name. The returned URL is relative to the API host.
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required and must be under 10MB", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		http.Error(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	// Sniff the actual content rather than trusting the extension.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		http.Error(w, "File is not a valid image", http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.Error("upload seek failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		h.logger.Error("upload dir create failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(h.cfg.UploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		h.logger.Error("upload create failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{
		URL:      fmt.Sprintf("/uploads/%s", filename),
		Filename: filename,
	})
}
