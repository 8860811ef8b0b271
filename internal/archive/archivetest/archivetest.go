// Package archivetest builds tar.gz fixtures and serves them over HTTP.
package archivetest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Entry describes one archive member. A Name ending in "/" is a directory.
type Entry struct {
	Name     string
	Body     string
	Linkname string
	Typeflag byte
	Mode     int64
}

// Dir returns a directory entry.
func Dir(name string) Entry {
	return Entry{Name: strings.TrimSuffix(name, "/") + "/", Typeflag: tar.TypeDir, Mode: 0o755}
}

// File returns a regular file entry.
func File(name, body string) Entry {
	return Entry{Name: name, Body: body, Typeflag: tar.TypeReg, Mode: 0o644}
}

// Symlink returns a symbolic link entry.
func Symlink(name, target string) Entry {
	return Entry{Name: name, Linkname: target, Typeflag: tar.TypeSymlink, Mode: 0o777}
}

// Hardlink returns a hard link entry pointing at the archive path target.
func Hardlink(name, target string) Entry {
	return Entry{Name: name, Linkname: target, Typeflag: tar.TypeLink, Mode: 0o644}
}

// GlobalHeader returns the pax global header git archive writes first.
func GlobalHeader(commit string) Entry {
	return Entry{Name: "pax_global_header", Body: commit, Typeflag: tar.TypeXGlobalHeader}
}

// Build returns the gzip-compressed tarball holding entries in order.
func Build(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.Name,
			Linkname: e.Linkname,
			Typeflag: e.Typeflag,
			Mode:     e.Mode,
		}
		switch e.Typeflag {
		case tar.TypeXGlobalHeader:
			hdr.PAXRecords = map[string]string{"comment": e.Body}
		case tar.TypeReg:
			hdr.Size = int64(len(e.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing header %q: %v", e.Name, err)
		}
		if e.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("writing body %q: %v", e.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}

// Digest returns the "sha256:<hex>" digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Server serves a fixed body and records the requests it answers.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	paths []string
}

// Serve starts a server that answers every GET with body. It is closed when
// the test ends.
func Serve(t testing.TB, body []byte) *Server {
	t.Helper()
	return ServeStatus(t, http.StatusOK, body)
}

// ServeStatus is like Serve but answers with status.
func ServeStatus(t testing.TB, status int, body []byte) *Server {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/x-gzip")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns how many requests the server answered.
func (s *Server) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Paths returns the request paths in arrival order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}
