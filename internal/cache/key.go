package cache

import (
	"crypto/md5"
	"encoding/hex"
)

// GenerateKey creates the content hash that names a cached video.
// Key is based on: topic + ":" + stepText, with no normalization, so
// existing animation_<key>.mp4 files stay addressable.
func GenerateKey(topic, stepText string) string {
	hash := md5.Sum([]byte(topic + ":" + stepText))
	return hex.EncodeToString(hash[:])
}

// FileName returns the video filename for a cache key
func FileName(key string) string {
	return filePrefix + key + fileExt
}
