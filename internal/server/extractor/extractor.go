// Package extractor resolves a public media page URL into direct media
// links and metadata using an external yt-dlp binary.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// Extractor is the black-box media extraction collaborator.
type Extractor interface {
	Extract(ctx context.Context, url string) (*models.MediaInfo, error)
}

// runCommand is a seam for tests; it returns stdout or an error carrying
// stderr.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(lastLine(msg))
		}
		return nil, err
	}
	return out, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// YTDLP shells out to yt-dlp in metadata-only mode.
type YTDLP struct {
	binary  string
	timeout time.Duration
}

func NewYTDLP(binary string, timeout time.Duration) *YTDLP {
	return &YTDLP{binary: binary, timeout: timeout}
}

func (y *YTDLP) Extract(ctx context.Context, url string) (*models.MediaInfo, error) {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	out, err := runCommand(ctx, y.binary,
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		"--no-playlist",
		"--no-check-certificates",
		"--", url,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrUpstreamExtraction, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrUpstreamExtraction, err)
	}

	info, err := ParseInfo(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUpstreamExtraction, err)
	}
	return info, nil
}

type rawFormat struct {
	URL    string `json:"url"`
	Vcodec string `json:"vcodec"`
	Acodec string `json:"acodec"`
}

type rawInfo struct {
	ExtractorKey     string      `json:"extractor_key"`
	Title            string      `json:"title"`
	Thumbnail        string      `json:"thumbnail"`
	Duration         float64     `json:"duration"`
	URL              string      `json:"url"`
	Vcodec           string      `json:"vcodec"`
	RequestedFormats []rawFormat `json:"requested_formats"`
}

// ParseInfo maps a yt-dlp JSON dump onto MediaInfo. A single-format result
// without video is reported as audio; merged formats are split into their
// video and audio parts.
func ParseInfo(data []byte) (*models.MediaInfo, error) {
	var raw rawInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode extractor output: %w", err)
	}

	info := &models.MediaInfo{
		Platform:  raw.ExtractorKey,
		Title:     raw.Title,
		Thumbnail: raw.Thumbnail,
		Duration:  raw.Duration,
	}

	if raw.URL != "" {
		if raw.Vcodec == "none" {
			info.AudioURL = raw.URL
		} else {
			info.VideoURL = raw.URL
		}
		return info, nil
	}

	for _, f := range raw.RequestedFormats {
		switch {
		case f.Vcodec != "" && f.Vcodec != "none" && info.VideoURL == "":
			info.VideoURL = f.URL
		case f.Vcodec == "none" && f.Acodec != "none" && info.AudioURL == "":
			info.AudioURL = f.URL
		}
	}
	if info.VideoURL == "" && info.AudioURL == "" {
		return nil, errors.New("no media url in extractor output")
	}
	return info, nil
}
