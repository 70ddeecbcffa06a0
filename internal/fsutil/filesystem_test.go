package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// fileNames lists the files stored in m.
func fileNames(m *MemoryFileSystem) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for name := range m.files {
		out = append(out, name)
	}
	return out
}

func TestFileSystemImplementations(t *testing.T) {
	var _ FileSystem = OSFileSystem{}
	var _ FileSystem = NewMemoryFileSystem()
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("a;b\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if data, _ := mfs.ReadFile("/created.txt"); len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := mfs.ReadFile("/created.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "a;b\n" {
		t.Errorf("expected %q, got %q", "a;b\n", data)
	}
}

func TestMemoryFileSystem_RenameAndRemove(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, _ := mfs.Create("/out/a.tmp")
	w.Write([]byte("x"))
	w.Close()

	if err := mfs.Rename("/out/a.tmp", "/out/a.csv"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if mfs.Exists("/out/a.tmp") {
		t.Error("old path should be gone after rename")
	}
	if !mfs.Exists("/out/a.csv") {
		t.Error("new path should exist after rename")
	}

	if err := mfs.Rename("/missing", "/x"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if err := mfs.Remove("/out/a.csv"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := mfs.Remove("/out/a.csv"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
	}
}

func TestWriteAtomic(t *testing.T) {
	mfs := NewMemoryFileSystem()

	err := WriteAtomic(mfs, "data/out.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "label;nlabel\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	data, err := mfs.ReadFile("data/out.csv")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "label;nlabel\n" {
		t.Errorf("unexpected content %q", data)
	}
	if !mfs.Exists("data") {
		t.Error("expected parent directory to be created")
	}
	if files := fileNames(mfs); len(files) != 1 {
		t.Errorf("expected only the final file, got %v", files)
	}
}

func TestWriteAtomic_FailureKeepsPrevious(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, _ := mfs.Create("out.csv")
	w.Write([]byte("previous"))
	w.Close()

	boom := errors.New("boom")
	err := WriteAtomic(mfs, "out.csv", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	data, _ := mfs.ReadFile("out.csv")
	if string(data) != "previous" {
		t.Errorf("expected previous content to survive, got %q", data)
	}
	if mfs.Exists("out.csv.tmp") {
		t.Error("temporary file should be removed on failure")
	}
}

func TestWriteAtomic_OSFileSystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := WriteAtomic(OSFileSystem{}, path, func(w io.Writer) error {
		_, err := io.WriteString(w, "ok")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ok" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}
