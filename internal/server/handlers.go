package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/alecf/manimator/internal/animation"
	"github.com/alecf/manimator/internal/cache"
)

// maxBodyBytes bounds /generate-animation request bodies
const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type generateRequest struct {
	StepText   string `json:"stepText"`
	StepNumber int    `json:"stepNumber"`
	Topic      string `json:"topic"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	VideoBase64 string `json:"videoBase64"`
	VideoPath   string `json:"videoPath"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: "manim-animation"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(zap.String("request_id", RequestIDFromContext(r.Context())))

	var body generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		logger.Debug("rejecting malformed body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	result, err := s.service.Generate(r.Context(), animation.Request{
		StepText:   body.StepText,
		StepNumber: body.StepNumber,
		Topic:      body.Topic,
	})
	if err != nil {
		if animation.IsInput(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("error generating animation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := os.ReadFile(result.VideoPath)
	if err != nil {
		logger.Error("cached video unreadable", zap.String("path", result.VideoPath), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate animation")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		VideoBase64: base64.StdEncoding.EncodeToString(data),
		VideoPath:   result.VideoPath,
	})
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.cache.Open(r.PathValue("filename"))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("failed to open video", zap.Error(err))
		}
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
