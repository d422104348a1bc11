package export

import (
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/spider"
)

type engineSource struct {
	e   *engine.Engine
	err error
}

func (s *engineSource) Do(_ context.Context, fn func(e *engine.Engine)) error {
	if s.err != nil {
		return s.err
	}
	fn(s.e)
	return nil
}

func newHandler(t *testing.T, ffmpeg string) *Handler {
	t.Helper()
	e := engine.NewEngine(spider.Build(), document.DefaultLibrary(), engine.DefaultOptions())
	return NewHandler(&engineSource{e: e}, spider.Build, ffmpeg, 64, 48)
}

func TestFrame(t *testing.T) {
	h := newHandler(t, "ffmpeg")

	tests := []struct {
		name       string
		query      string
		wantW      int
		wantH      int
		wantStatus int
	}{
		{"default size", "", 64, 48, http.StatusOK},
		{"custom size", "?width=32&height=16", 32, 16, http.StatusOK},
		{"zero width", "?width=0", 0, 0, http.StatusBadRequest},
		{"too tall", "?height=99999", 0, 0, http.StatusBadRequest},
		{"not a number", "?width=wide", 0, 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Frame(rec, httptest.NewRequest(http.MethodGet, "/export/frame.png"+tt.query, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q", ct)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFrameSourceUnavailable(t *testing.T) {
	h := NewHandler(&engineSource{err: errors.New("stopped")}, spider.Build, "ffmpeg", 8, 8)
	rec := httptest.NewRecorder()
	h.Frame(rec, httptest.NewRequest(http.MethodGet, "/export/frame.png", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestTourRejectsBadParameters(t *testing.T) {
	h := newHandler(t, "ffmpeg")

	for _, query := range []string{
		"format=avi",
		"steps=0",
		"steps=1000",
		"easing=wobble",
		"width=-1",
	} {
		t.Run(query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Tour(rec, httptest.NewRequest(http.MethodPost, "/export/tour?"+query, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestTourWritesFrames(t *testing.T) {
	lib := document.DefaultLibrary()
	var poses []engine.Pose
	for _, name := range lib.Names() {
		p, err := lib.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		poses = append(poses, p)
	}

	tr := tour{
		poses:  poses,
		view:   engine.NewQuaternion(),
		steps:  3,
		easing: engine.EasingLinear,
		width:  24,
		height: 24,
		camera: newHandler(t, "").Camera,
	}

	dir := t.TempDir()
	n, err := tr.write(context.Background(), dir, spider.Build())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != tr.Len() || n != lib.Len()*3 {
		t.Fatalf("frames = %d, want %d", n, lib.Len()*3)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	if len(files) != n {
		t.Fatalf("files = %d, want %d", len(files), n)
	}
	f, err := os.Open(filepath.Join(dir, "frame_0000.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("decode first frame: %v", err)
	}
}

func TestTourStopsOnCancel(t *testing.T) {
	lib := document.DefaultLibrary()
	p := lib.Stop()
	tr := tour{poses: []engine.Pose{p}, view: engine.NewQuaternion(), steps: 4, width: 8, height: 8}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.write(ctx, t.TempDir(), spider.Build()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// fakeFfmpeg writes "fake" to its last argument, the output path.
func fakeFfmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\necho fake > \"$last\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTourEncodes(t *testing.T) {
	h := newHandler(t, fakeFfmpeg(t))

	tests := []struct {
		format      string
		contentType string
	}{
		{"gif", "image/gif"},
		{"mp4", "video/mp4"},
		{"webm", "video/webm"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := httptest.NewRecorder()
			url := "/export/tour?steps=1&width=16&height=16&name=my+spider&format=" + tt.format
			h.Tour(rec, httptest.NewRequest(http.MethodPost, url, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			wantDisposition := `attachment; filename="my-spider.` + tt.format + `"`
			if cd := rec.Header().Get("Content-Disposition"); cd != wantDisposition {
				t.Errorf("Content-Disposition = %q, want %q", cd, wantDisposition)
			}
			if id := rec.Header().Get("X-Export-ID"); !strings.HasPrefix(id, "exp_") {
				t.Errorf("X-Export-ID = %q", id)
			}
			if body := rec.Body.String(); body != "fake\n" {
				t.Errorf("body = %q", body)
			}
		})
	}
}

func TestTourFfmpegMissing(t *testing.T) {
	h := newHandler(t, filepath.Join(t.TempDir(), "no-such-ffmpeg"))

	rec := httptest.NewRecorder()
	h.Tour(rec, httptest.NewRequest(http.MethodPost, "/export/tour?steps=1&width=8&height=8", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "encoding failed") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
