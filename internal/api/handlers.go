package api

import (
	"encoding/json"
	"net/http"

	"github.com/tubelens/tubelens/internal/gateway"
	"github.com/tubelens/tubelens/internal/linkify"
	"github.com/tubelens/tubelens/internal/sanitize"
)

type timestampRequest struct {
	VideoID string `json:"videoId"`
}

type timestampResponse struct {
	Timestamps []string `json:"timestamps"`
	Success    bool     `json:"success"`
}

type chatRequest struct {
	Message            string                   `json:"message"`
	VideoID            string                   `json:"videoId"`
	Context            []gateway.ContextMessage `json:"context"`
	ExistingTimestamps []string                 `json:"existingTimestamps"`
}

type chatResponse struct {
	Content    string   `json:"content"`
	Timestamps []string `json:"timestamps"`
	HTML       string   `json:"html,omitempty"`
	Success    bool     `json:"success"`
}

// generateTimestamps handles POST /generate-timestamps.
func (s *Server) generateTimestamps(w http.ResponseWriter, r *http.Request) {
	var req timestampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.VideoID == "" {
		writeError(w, http.StatusBadRequest, "Video ID is required")
		return
	}

	timestamps, err := s.gw.GenerateTimestamps(r.Context(), req.VideoID)
	if err != nil {
		s.writeGatewayError(w, r, err)
		return
	}
	if timestamps == nil {
		timestamps = []string{}
	}

	writeJSON(w, http.StatusOK, timestampResponse{Timestamps: timestamps, Success: true})
}

// chatWithVideo handles POST /chat-with-video.
func (s *Server) chatWithVideo(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Message == "" || req.VideoID == "" {
		writeError(w, http.StatusBadRequest, "Message and video ID are required")
		return
	}

	res, err := s.gw.Chat(r.Context(), gateway.ChatRequest{
		Message:         req.Message,
		VideoID:         req.VideoID,
		Context:         req.Context,
		KnownTimestamps: req.ExistingTimestamps,
	})
	if err != nil {
		s.writeGatewayError(w, r, err)
		return
	}

	resp := chatResponse{
		Content:    res.Content,
		Timestamps: res.Timestamps,
		Success:    true,
	}
	if resp.Timestamps == nil {
		resp.Timestamps = []string{}
	}

	// Pre-rendered display form: emphasis repair, then markdown with
	// clickable timestamp spans. Content stays verbatim either way.
	if html, err := linkify.RenderHTML(sanitize.Clean(res.Content)); err == nil {
		resp.HTML = html
	} else {
		s.logger.Warn("chat response render failed", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}
