package models

// MediaInfo is the metadata record returned by the extraction collaborator
// and stored, JSON-encoded, in the response cache.
type MediaInfo struct {
	Platform  string  `json:"platform"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration,omitempty"`
	VideoURL  string  `json:"video_url,omitempty"`
	AudioURL  string  `json:"audio_url,omitempty"`
}
