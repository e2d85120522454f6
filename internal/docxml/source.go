package docxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
)

// tempFileThreshold is the payload size above which the document is spilled
// to disk instead of being shared in memory across page workers.
const tempFileThreshold = 50 << 20

// Source is a read-only handle to the raw document archive that every page
// worker can open independently. Small payloads stay in memory; large ones
// are written once to a temp file.
type Source struct {
	data []byte
	path string
	size int64
}

// NewSource wraps raw document bytes. dir is the directory for the spill
// file ("" means the system temp dir). The caller owns Cleanup.
func NewSource(data []byte, dir string) (*Source, error) {
	s := &Source{size: int64(len(data))}
	if len(data) <= tempFileThreshold {
		s.data = data
		return s, nil
	}
	f, err := os.CreateTemp(dir, "docreader-src-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write spill file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	s.path = f.Name()
	return s, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns a fresh archive view of the document. The returned closer
// must be closed when the view is no longer needed.
func (s *Source) Open() (*zip.Reader, io.Closer, error) {
	if s.path == "" {
		zr, err := zip.NewReader(bytes.NewReader(s.data), s.size)
		if err != nil {
			return nil, nil, fmt.Errorf("open document archive: %w", err)
		}
		return zr, nopCloser{}, nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open spill file: %w", err)
	}
	zr, err := zip.NewReader(f, s.size)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open document archive: %w", err)
	}
	return zr, f, nil
}

// OpenReader opens a parsed Reader over a fresh archive view.
func (s *Source) OpenReader() (*Reader, io.Closer, error) {
	zr, closer, err := s.Open()
	if err != nil {
		return nil, nil, err
	}
	r, err := NewReader(zr)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return r, closer, nil
}

// Cleanup removes the spill file, if any. Safe to call multiple times.
func (s *Source) Cleanup() error {
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	s.path = ""
	s.data = nil
	return err
}
