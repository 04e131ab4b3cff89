package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInfo_SingleVideo(t *testing.T) {
	info, err := ParseInfo([]byte(`{
		"extractor_key": "Youtube",
		"title": "clip",
		"thumbnail": "https://i/t.jpg",
		"duration": 12.5,
		"url": "https://cdn/v.mp4",
		"vcodec": "avc1"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Youtube", info.Platform)
	assert.Equal(t, "clip", info.Title)
	assert.Equal(t, 12.5, info.Duration)
	assert.Equal(t, "https://cdn/v.mp4", info.VideoURL)
	assert.Empty(t, info.AudioURL)
}

func TestParseInfo_AudioOnly(t *testing.T) {
	info, err := ParseInfo([]byte(`{"extractor_key":"Soundcloud","url":"https://cdn/a.mp3","vcodec":"none"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.mp3", info.AudioURL)
	assert.Empty(t, info.VideoURL)
}

func TestParseInfo_RequestedFormats(t *testing.T) {
	info, err := ParseInfo([]byte(`{
		"extractor_key": "Youtube",
		"requested_formats": [
			{"url": "https://cdn/v", "vcodec": "vp9", "acodec": "none"},
			{"url": "https://cdn/a", "vcodec": "none", "acodec": "opus"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/v", info.VideoURL)
	assert.Equal(t, "https://cdn/a", info.AudioURL)
}

func TestParseInfo_Errors(t *testing.T) {
	_, err := ParseInfo([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseInfo([]byte(`{"title":"no links"}`))
	assert.Error(t, err)
}

func TestExtract_RunsBinaryWithURLLast(t *testing.T) {
	orig := runCommand
	defer func() { runCommand = orig }()

	var gotName string
	var gotArgs []string
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte(`{"extractor_key":"Vimeo","url":"https://cdn/x"}`), nil
	}

	info, err := NewYTDLP("yt-dlp", time.Second).Extract(context.Background(), "https://vimeo.com/1")
	require.NoError(t, err)
	assert.Equal(t, "Vimeo", info.Platform)
	assert.Equal(t, "yt-dlp", gotName)
	require.GreaterOrEqual(t, len(gotArgs), 2)
	assert.Equal(t, []string{"--", "https://vimeo.com/1"}, gotArgs[len(gotArgs)-2:])
	assert.Contains(t, gotArgs, "--dump-single-json")
}

func TestExtract_FailureIsUpstream(t *testing.T) {
	orig := runCommand
	defer func() { runCommand = orig }()

	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("ERROR: Unsupported URL")
	}

	_, err := NewYTDLP("yt-dlp", 0).Extract(context.Background(), "https://nowhere")
	assert.ErrorIs(t, err, common.ErrUpstreamExtraction)
	assert.ErrorContains(t, err, "Unsupported URL")
}

func TestExtract_Timeout(t *testing.T) {
	orig := runCommand
	defer func() { runCommand = orig }()

	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, errors.New("signal: killed")
	}

	_, err := NewYTDLP("yt-dlp", 10*time.Millisecond).Extract(context.Background(), "https://slow")
	assert.ErrorIs(t, err, common.ErrUpstreamExtraction)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "b", lastLine("a\nb"))
	assert.Equal(t, "only", lastLine("only"))
}
