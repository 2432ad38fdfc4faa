// Package video resolves user-supplied YouTube URLs to canonical video IDs
// and builds player embed URLs.
package video

import (
	"fmt"
	"regexp"
)

var (
	urlPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)
	bareIDRe   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractID resolves a YouTube URL or bare 11-character ID to a video ID.
// Resolution is purely syntactic; a well-formed ID for a nonexistent video
// is only discovered when the upstream model is asked about it.
func ExtractID(input string) (string, bool) {
	if m := urlPattern.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	if bareIDRe.MatchString(input) {
		return input, true
	}
	return "", false
}

// WatchURL builds the canonical watch URL handed to the upstream model.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// EmbedURL builds a player embed URL for a video.
func EmbedURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?enablejsapi=1", videoID)
}

// EmbedURLAt builds a player embed URL starting playback at the given
// second offset. Seeking rebuilds the source reference rather than
// assuming an incremental seek API.
func EmbedURLAt(videoID string, startSeconds int) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?start=%d&autoplay=1", videoID, startSeconds)
}
