package dirstat

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"simple", "a.txt", "txt"},
		{"nested", filepath.Join("dir", "b.md"), "md"},
		{"last dot wins", "archive.tar.gz", "gz"},
		{"no dot is whole name", "README", "README"},
		{"dotted directory only", filepath.Join("v1.2", "Makefile"), "Makefile"},
		{"trailing dot", "weird.", ""},
		{"dot file", ".bashrc", "bashrc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.path))
		})
	}
}

func TestAggregate(t *testing.T) {
	files := []File{
		{Path: "a.txt", Extension: "txt", Size: 3},
		{Path: "c.md", Extension: "md", Size: 10},
		{Path: "b.txt", Extension: "txt", Size: 5},
	}

	got := Aggregate(files)

	assert.Equal(t, []Summary{
		{Extension: "txt", Size: 8, Files: 2},
		{Extension: "md", Size: 10, Files: 1},
	}, got)
	assert.Equal(t, int64(3), Total(got))
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)

	assert.Empty(t, got)
	assert.Zero(t, Total(got))
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", 3)
	writeFile(t, root, "b.txt", 5)
	writeFile(t, root, "c.md", 10)
	writeFile(t, root, filepath.Join("sub", "deeper", "README"), 7)
	writeFile(t, root, filepath.Join("sub", "empty.txt"), 0)

	files, err := Files(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)
	require.Len(t, files, 5)

	summaries := Aggregate(files)
	assert.Equal(t, int64(len(files)), Total(summaries))

	bySize := map[string]Summary{}
	for _, s := range summaries {
		bySize[s.Extension] = s
	}

	assert.Equal(t, Summary{Extension: "txt", Size: 8, Files: 3}, bySize["txt"])
	assert.Equal(t, Summary{Extension: "md", Size: 10, Files: 1}, bySize["md"])
	assert.Equal(t, Summary{Extension: "README", Size: 7, Files: 1}, bySize["README"])
}

func TestFilesHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "visible.go", 1)
	writeFile(t, root, ".hidden.go", 2)
	writeFile(t, root, filepath.Join(".cache", "inner.go"), 4)

	files, err := Files(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "visible.go", filepath.Base(files[0].Path))

	files, err = Files(context.Background(), Options{Path: root, Hidden: true}, nil)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestFilesSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "target.txt", 4)

	if err := os.Symlink(filepath.Join(root, "target.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := Files(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "target.txt", filepath.Base(files[0].Path))
}

func TestFilesEmptyDirectory(t *testing.T) {
	files, err := Files(context.Background(), Options{Path: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFilesMissingRoot(t *testing.T) {
	_, err := Files(context.Background(), Options{Path: filepath.Join(t.TempDir(), "nope")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilesRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", 1)

	_, err := Files(context.Background(), Options{Path: filepath.Join(root, "a.txt")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestFilesUnreadableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	writeFile(t, root, "a.txt", 1)

	require.NoError(t, os.Chmod(root, 0o000))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	files, err := Files(context.Background(), Options{Path: root}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Nil(t, files)
}

func TestFilesUnreadableSubdirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	writeFile(t, root, "a.txt", 1)
	writeFile(t, root, filepath.Join("locked", "b.txt"), 1)

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	files, err := Files(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", filepath.Base(files[0].Path))
}

// progressRecorder collects hook calls from the reporter goroutine.
type progressRecorder struct {
	mu    sync.Mutex
	files []int64
	bytes []int64
}

func (r *progressRecorder) hook(files, bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = append(r.files, files)
	r.bytes = append(r.bytes, bytes)
}

func (r *progressRecorder) calls() ([]int64, []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int64(nil), r.files...), append([]int64(nil), r.bytes...)
}

func TestFilesProgress(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 200; i++ {
		writeFile(t, root, filepath.Join("d"+string(rune('a'+i%20)), "f"+string(rune('a'+i/20))+".txt"), 10)
	}

	recorder := &progressRecorder{}

	files, err := Files(context.Background(), Options{Path: root, ProgressInterval: time.Millisecond}, recorder.hook)
	require.NoError(t, err)
	require.Len(t, files, 200)

	counts, sizes := recorder.calls()
	for i := 1; i < len(counts); i++ {
		assert.GreaterOrEqual(t, counts[i], counts[i-1])
		assert.GreaterOrEqual(t, sizes[i], sizes[i-1])
	}

	for i := range counts {
		assert.LessOrEqual(t, counts[i], int64(200))
		assert.Equal(t, counts[i]*10, sizes[i])
	}

	time.Sleep(20 * time.Millisecond)

	after, _ := recorder.calls()
	assert.Len(t, after, len(counts), "no progress updates after Files returned")
}

func TestProgressReporterStops(t *testing.T) {
	c := newCollector()
	c.add("a.txt", 3)
	c.add("b.txt", 5)

	recorder := &progressRecorder{}
	stop := startProgressReporter(context.Background(), c, recorder.hook, time.Millisecond)

	require.Eventually(t, func() bool {
		counts, _ := recorder.calls()

		return len(counts) > 0
	}, time.Second, time.Millisecond)

	stop()

	counts, sizes := recorder.calls()
	assert.Equal(t, int64(2), counts[0])
	assert.Equal(t, int64(8), sizes[0])

	time.Sleep(20 * time.Millisecond)

	after, _ := recorder.calls()
	assert.Len(t, after, len(counts))
}

func TestProgressReporterWithoutHook(t *testing.T) {
	stop := startProgressReporter(context.Background(), newCollector(), nil, time.Millisecond)
	stop()
}
