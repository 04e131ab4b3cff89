package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

const usageHint = "/api/download?token=TOKEN&url=MEDIA_LINK"

var blockedMessages = map[string]string{
	"missing": "Access token missing",
	"invalid": "Invalid access token",
	"expired": "Access token expired",
}

type successEnvelope struct {
	Status     string  `json:"status"`
	APIName    string  `json:"api_name"`
	APIVersion string  `json:"api_version"`
	Developer  string  `json:"developer,omitempty"`
	Platform   string  `json:"platform"`
	Title      string  `json:"title"`
	Thumbnail  string  `json:"thumbnail"`
	Duration   float64 `json:"duration,omitempty"`
	VideoURL   string  `json:"video_url,omitempty"`
	AudioURL   string  `json:"audio_url,omitempty"`
	Cached     bool    `json:"cached"`
}

type blockedEnvelope struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Help    string `json:"help"`
	Contact string `json:"contact"`
}

type errorEnvelope struct {
	Status     string `json:"status"`
	APIName    string `json:"api_name,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
	Message    string `json:"message"`
	Example    string `json:"example,omitempty"`
}

type infoEnvelope struct {
	API       string `json:"api"`
	Version   string `json:"version"`
	Developer string `json:"developer,omitempty"`
	Contact   string `json:"contact,omitempty"`
	Usage     string `json:"usage"`
}

// writeJSON encodes v into a pooled buffer first so a failed encode never
// leaves a half-written body.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	if err := json.NewEncoder(bb).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(bb.Len()))
	w.WriteHeader(status)
	_, err := w.Write(bb.B)
	return err
}
