package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePrefix = "animation_"
	fileExt    = ".mp4"
)

// ErrNotFound is returned by Open for names that are absent or not servable
var ErrNotFound = errors.New("video not found")

// Cache is a flat directory of rendered videos named by content hash.
// Entries are never expired; the filename is the index.
type Cache struct {
	dir string
}

// New creates a cache rooted at dir
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the storage directory
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the deterministic storage path for a key
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, FileName(key))
}

// Lookup returns the cached video for (topic, stepText) if it exists
func (c *Cache) Lookup(topic, stepText string) (string, bool) {
	path := c.Path(GenerateKey(topic, stepText))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// Store moves a rendered video into the cache under key and returns its path.
// Concurrent stores for the same key overwrite each other; last writer wins.
func (c *Cache) Store(key, srcPath string) (string, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create video directory: %w", err)
	}

	dest := c.Path(key)
	if err := os.Rename(srcPath, dest); err == nil {
		return dest, nil
	}

	// Rename fails across filesystems (temp dirs are often tmpfs)
	if err := copyFile(srcPath, dest); err != nil {
		return "", fmt.Errorf("failed to move video into cache: %w", err)
	}
	os.Remove(srcPath)
	return dest, nil
}

// copyFile copies src next to dest and renames it into place
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".incoming-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// Open opens a stored video by bare filename for serving.
// Anything that is not a plain file directly inside the cache is ErrNotFound.
func (c *Cache) Open(filename string) (*os.File, os.FileInfo, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename {
		return nil, nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(c.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open video: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat video: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotFound
	}

	return f, info, nil
}

// isEntry reports whether a directory entry is a cached video
func isEntry(entry os.DirEntry) bool {
	name := entry.Name()
	return !entry.IsDir() && strings.HasPrefix(name, filePrefix) && filepath.Ext(name) == fileExt
}

// Clear removes all cached videos
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read video directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if !isEntry(entry) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

// Stats returns cache statistics
type Stats struct {
	TotalEntries   int        `json:"total_entries"`
	TotalSizeBytes int64      `json:"total_size_bytes"`
	OldestEntry    *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry    *time.Time `json:"newest_entry,omitempty"`
}

// GetStats returns cache statistics
func (c *Cache) GetStats() (*Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Stats{}, nil
		}
		return nil, fmt.Errorf("failed to read video directory: %w", err)
	}

	stats := &Stats{}

	for _, entry := range entries {
		if !isEntry(entry) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		stats.TotalEntries++
		stats.TotalSizeBytes += info.Size()

		modTime := info.ModTime()
		if stats.OldestEntry == nil || modTime.Before(*stats.OldestEntry) {
			stats.OldestEntry = &modTime
		}
		if stats.NewestEntry == nil || modTime.After(*stats.NewestEntry) {
			stats.NewestEntry = &modTime
		}
	}

	return stats, nil
}
