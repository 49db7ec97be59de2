package thumbs

import (
	"crypto/sha1"
	"encoding/hex"
)

// ThumbJob is what we push to Redis Streams. No bytes here — workers fetch
// the source by URL.
type ThumbJob struct {
	ImageURL string `json:"image_url"`
	Key      string `json:"key,omitempty"` // optional override; default derives from the URL
}

// ObjectKey is the bucket key the thumbnail lands under. Deriving it from
// the URL makes re-enqueues of the same asset idempotent.
func (j ThumbJob) ObjectKey() string {
	if j.Key != "" {
		return j.Key
	}
	sum := sha1.Sum([]byte(j.ImageURL))
	return "thumbs/" + hex.EncodeToString(sum[:]) + ".webp"
}
