package videocourse

import (
	"fmt"
	"regexp"
)

// videoIDPattern captures an 11-character id from watch, embed and short
// URLs as well as bare ids. It matches the first such token anywhere in the
// string, so callers should pass YouTube references only.
var videoIDPattern = regexp.MustCompile(`(?:embed\/|watch\?v=|\/)?([a-zA-Z0-9_-]{11})`)

// ExtractVideoID returns the video id contained in a URL or bare id
func ExtractVideoID(ref string) (string, bool) {
	match := videoIDPattern.FindStringSubmatch(ref)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// WatchURL is the canonical page URL for a video id
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// EmbedURL is the embeddable player URL for a video id
func EmbedURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s", videoID)
}
