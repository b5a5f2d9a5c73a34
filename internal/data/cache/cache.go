package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// CachedArtifact holds the parsed events of one artifact together with
// the file identity they were parsed from. A cached entry is served
// only while inode, size, and modification time still match.
type CachedArtifact struct {
	Path    string        `json:"path"`
	ModTime int64         `json:"modTime"`
	Size    int64         `json:"size"`
	Inode   uint64        `json:"inode"`
	Events  []model.Event `json:"events"`
}

// Cache is a two-tier (memory, file) parse cache keyed by artifact
// path. It only ever shortcuts re-parsing; a miss is never an error.
type Cache struct {
	baseDir     string
	mu          sync.RWMutex
	memoryCache map[string]*CachedArtifact
}

// NewCache creates a parse cache rooted at baseDir.
func NewCache(baseDir string) (*Cache, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		baseDir:     baseDir,
		memoryCache: make(map[string]*CachedArtifact),
	}, nil
}

// cacheFile maps an artifact path to its cache file name.
func (c *Cache) cacheFile(artifactPath string) string {
	sum := sha256.Sum256([]byte(artifactPath))
	return filepath.Join(c.baseDir, hex.EncodeToString(sum[:16])+".json")
}

// Get returns the cached events for the artifact, or found=false when
// the artifact was never cached or has changed since.
func (c *Cache) Get(artifactPath string) ([]model.Event, bool) {
	c.mu.RLock()
	entry, inMemory := c.memoryCache[artifactPath]
	c.mu.RUnlock()

	if inMemory && c.valid(entry) {
		return entry.Events, true
	}

	data, err := os.ReadFile(c.cacheFile(artifactPath))
	if err != nil {
		return nil, false
	}

	var cached CachedArtifact
	if err := sonic.Unmarshal(data, &cached); err != nil {
		util.LogDebug(fmt.Sprintf("Discard unreadable cache entry for %s: %v", artifactPath, err))
		return nil, false
	}

	if !c.valid(&cached) {
		return nil, false
	}

	c.mu.Lock()
	c.memoryCache[artifactPath] = &cached
	c.mu.Unlock()

	return cached.Events, true
}

// valid reports whether the artifact on disk still matches the cached
// identity.
func (c *Cache) valid(entry *CachedArtifact) bool {
	info, err := util.GetFileInfo(entry.Path)
	if err != nil {
		return false
	}
	if info.Inode != entry.Inode {
		util.LogDebug(fmt.Sprintf("Cache invalidated for %s: inode changed (cached: %d, current: %d)",
			entry.Path, entry.Inode, info.Inode))
		return false
	}
	if info.Size != entry.Size {
		util.LogDebug(fmt.Sprintf("Cache invalidated for %s: size changed (cached: %d, current: %d)",
			entry.Path, entry.Size, info.Size))
		return false
	}
	if info.ModTime != entry.ModTime {
		util.LogDebug(fmt.Sprintf("Cache invalidated for %s: modtime changed (cached: %d, current: %d)",
			entry.Path, entry.ModTime, info.ModTime))
		return false
	}
	return true
}

// Set stores the parsed events of the artifact in both tiers.
func (c *Cache) Set(artifactPath string, events []model.Event) error {
	info, err := util.GetFileInfo(artifactPath)
	if err != nil {
		return err
	}

	entry := &CachedArtifact{
		Path:    artifactPath,
		ModTime: info.ModTime,
		Size:    info.Size,
		Inode:   info.Inode,
		Events:  events,
	}

	data, err := sonic.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.cacheFile(artifactPath), data, 0644); err != nil {
		return err
	}

	c.mu.Lock()
	c.memoryCache[artifactPath] = entry
	c.mu.Unlock()

	return nil
}

// Clear drops both tiers.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memoryCache = make(map[string]*CachedArtifact)

	return filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".json" {
			os.Remove(path)
		}
		return nil
	})
}
