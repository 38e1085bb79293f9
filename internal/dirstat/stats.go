package dirstat

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/idelchi/extcheck/internal/logger"
)

// File represents a single regular file found during the walk.
type File struct {
	// Path is the file path as reported by the walk.
	Path string `json:"path"`
	// Extension is the extension derived with Extension.
	Extension string `json:"extension"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Summary represents the accumulated statistics for one extension.
type Summary struct {
	// Extension is the extension all counted files share.
	Extension string `json:"extension"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
	// Files is the number of files with this extension.
	Files int64 `json:"files"`
}

// Options configures the directory walk.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Hidden includes entries whose name starts with a dot.
	Hidden bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Log receives debug output.
	Log logger.Logger
}

// Extension returns the part of the file name after its last dot.
// A name without a dot is returned whole, so "README" is its own extension.
func Extension(path string) string {
	name := filepath.Base(path)

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}

	return name
}

// Aggregate folds files into one Summary per extension.
// Summaries are returned in the order their extension was first seen.
func Aggregate(files []File) []Summary {
	index := make(map[string]int)
	summaries := make([]Summary, 0)

	for _, f := range files {
		i, ok := index[f.Extension]
		if !ok {
			i = len(summaries)
			index[f.Extension] = i

			summaries = append(summaries, Summary{Extension: f.Extension})
		}

		summaries[i].Size += f.Size
		summaries[i].Files++
	}

	return summaries
}

// Total returns the number of files counted across all summaries.
func Total(summaries []Summary) int64 {
	var total int64
	for _, s := range summaries {
		total += s.Files
	}

	return total
}

// collector gathers files from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu         sync.Mutex // Protect concurrent access
	files      []File
	totalBytes int64
	errorCount int64
}

// newCollector creates an empty collector.
func newCollector() *collector {
	return &collector{files: make([]File, 0)}
}

// addError increments the error counter.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
}

// add records a file. Safe for concurrent use since fastwalk calls the
// callback from multiple goroutines.
func (c *collector) add(path string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalBytes += size
	c.files = append(c.files, File{
		Path:      path,
		Extension: Extension(path),
		Size:      size,
	})
}

// snapshot returns the current file count and byte total.
func (c *collector) snapshot() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return int64(len(c.files)), c.totalBytes
}

// finalize hands out the collected files. The collector must not be used
// afterwards.
func (c *collector) finalize() ([]File, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := c.files
	c.files = nil

	return files, c.errorCount
}
