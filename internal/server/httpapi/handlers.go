package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/dmitrijs2005/mediagate/internal/server/services"
)

type AccessChecker interface {
	Check(ctx context.Context, token string) (services.Decision, error)
}

type ResultCache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Put(ctx context.Context, url string, result []byte) error
}

type UsageRecorder interface {
	Record(ctx context.Context, userID, platform, url string)
}

type Extractor interface {
	Extract(ctx context.Context, url string) (*models.MediaInfo, error)
}

// Info identifies the API in every envelope and on the root endpoint.
type Info struct {
	APIName    string
	APIVersion string
	Developer  string
	Contact    string
}

type handlers struct {
	access    AccessChecker
	cache     ResultCache
	usage     UsageRecorder
	extractor Extractor
	info      Info
	log       logging.Logger
}

// tokenFromRequest accepts the token query parameter, the legacy key
// parameter or an Authorization bearer header, in that order.
func tokenFromRequest(r *http.Request) string {
	q := r.URL.Query()
	if t := strings.TrimSpace(q.Get("token")); t != "" {
		return t
	}
	if t := strings.TrimSpace(q.Get("key")); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func validMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, infoEnvelope{
		API:       h.info.APIName,
		Version:   h.info.APIVersion,
		Developer: h.info.Developer,
		Contact:   h.info.Contact,
		Usage:     usageHint,
	})
}

func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.access.Check(ctx, tokenFromRequest(r))
	if err != nil {
		h.log.Error(ctx, "access check failed", "error", err)
		h.fail(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	if !d.Allowed {
		reason := string(d.Reason)
		_ = writeJSON(w, http.StatusForbidden, blockedEnvelope{
			Status:  "blocked",
			Reason:  reason,
			Message: blockedMessages[reason],
			Help:    "This API is protected. Contact the owner for access.",
			Contact: h.info.Contact,
		})
		return
	}

	mediaURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if mediaURL == "" {
		h.fail(w, http.StatusBadRequest, "Missing url parameter", usageHint)
		return
	}
	if !validMediaURL(mediaURL) {
		h.fail(w, http.StatusBadRequest, "Invalid url parameter", usageHint)
		return
	}

	info, cached := h.lookup(ctx, mediaURL)
	if info == nil {
		info, err = h.extractor.Extract(ctx, mediaURL)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			h.log.Warn(ctx, "extraction failed", "url", mediaURL, "error", err)
			h.fail(w, http.StatusBadGateway, err.Error(), "")
			return
		}
		h.store(context.WithoutCancel(ctx), mediaURL, info)
	}

	h.usage.Record(context.WithoutCancel(ctx), d.UserID, info.Platform, mediaURL)

	_ = writeJSON(w, http.StatusOK, successEnvelope{
		Status:     "success",
		APIName:    h.info.APIName,
		APIVersion: h.info.APIVersion,
		Developer:  h.info.Developer,
		Platform:   info.Platform,
		Title:      info.Title,
		Thumbnail:  info.Thumbnail,
		Duration:   info.Duration,
		VideoURL:   info.VideoURL,
		AudioURL:   info.AudioURL,
		Cached:     cached,
	})
}

// lookup returns a fresh cached result. Cache failures degrade to a miss.
func (h *handlers) lookup(ctx context.Context, mediaURL string) (*models.MediaInfo, bool) {
	b, ok, err := h.cache.Get(ctx, mediaURL)
	if err != nil {
		h.log.Warn(ctx, "cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var info models.MediaInfo
	if err := json.Unmarshal(b, &info); err != nil {
		h.log.Warn(ctx, "cache entry undecodable", "url", mediaURL, "error", err)
		return nil, false
	}
	return &info, true
}

func (h *handlers) store(ctx context.Context, mediaURL string, info *models.MediaInfo) {
	b, err := json.Marshal(info)
	if err != nil {
		h.log.Error(ctx, "cache encode failed", "error", err)
		return
	}
	if err := h.cache.Put(ctx, mediaURL, b); err != nil {
		h.log.Warn(ctx, "cache write failed", "url", mediaURL, "error", err)
	}
}

func (h *handlers) fail(w http.ResponseWriter, status int, msg, example string) {
	_ = writeJSON(w, status, errorEnvelope{
		Status:     "error",
		APIName:    h.info.APIName,
		APIVersion: h.info.APIVersion,
		Message:    msg,
		Example:    example,
	})
}
