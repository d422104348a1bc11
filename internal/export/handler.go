// Package export renders the rig to still images and to pose tours encoded
// with ffmpeg.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/render"
	"github.com/inamate/spider/internal/typeid"
)

const (
	maxImageSize = 2048
	maxTourSteps = 120
	defaultSteps = 12
	defaultFPS   = 24
)

// Source runs fn against the live engine on its owning goroutine.
type Source interface {
	Do(ctx context.Context, fn func(e *engine.Engine)) error
}

type Handler struct {
	source     Source
	build      func() *engine.Rig
	ffmpegPath string

	Camera render.Camera
	Width  int
	Height int
}

// NewHandler creates an export handler. build assembles a scratch rig for
// tours so the live rig is never animated by an export.
func NewHandler(source Source, build func() *engine.Rig, ffmpegPath string, width, height int) *Handler {
	return &Handler{
		source:     source,
		build:      build,
		ffmpegPath: ffmpegPath,
		Camera:     render.DefaultCamera(),
		Width:      width,
		Height:     height,
	}
}

// Frame writes the live frame as PNG.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	width, height, err := h.size(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var commands []engine.DrawCommand
	if err := h.source.Do(r.Context(), func(e *engine.Engine) {
		commands = e.Compile()
	}); err != nil {
		slog.Error("compile frame", "error", err)
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Snapshot(commands, width, height, h.Camera)); err != nil {
		slog.Error("encode frame", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// Tour renders a loop through every pose of the library and encodes it as
// gif, mp4 or webm.
func (h *Handler) Tour(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "gif"
	}
	if format != "mp4" && format != "gif" && format != "webm" {
		http.Error(w, "invalid format: must be mp4, gif, or webm", http.StatusBadRequest)
		return
	}

	fps, err := strconv.Atoi(q.Get("fps"))
	if err != nil || fps <= 0 || fps > 120 {
		fps = defaultFPS
	}

	steps := defaultSteps
	if s := q.Get("steps"); s != "" {
		steps, err = strconv.Atoi(s)
		if err != nil || steps <= 0 || steps > maxTourSteps {
			http.Error(w, fmt.Sprintf("steps must be between 1 and %d", maxTourSteps), http.StatusBadRequest)
			return
		}
	}

	easing, err := engine.ParseEasing(q.Get("easing"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	width, height, err := h.size(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := sanitize(q.Get("name"))

	t := tour{steps: steps, easing: easing, width: width, height: height, camera: h.Camera}
	if err := h.source.Do(r.Context(), func(e *engine.Engine) {
		lib := e.Poses()
		for _, n := range lib.Names() {
			p, _ := lib.Get(n)
			t.poses = append(t.poses, p)
		}
		t.view = e.View()
	}); err != nil {
		slog.Error("capture tour", "error", err)
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}

	exportID := typeid.Export.New()
	tempDir, err := os.MkdirTemp("", "spider-export-*")
	if err != nil {
		slog.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	frameCount, err := t.write(r.Context(), tempDir, h.build())
	if err != nil {
		slog.Error("render tour", "export", exportID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("export started", "export", exportID, "format", format, "frames", frameCount, "fps", fps)

	frames := filepath.Join(tempDir, "frame_%04d.png")
	var outputFile string
	var contentType string
	var cmdErr error

	switch format {
	case "mp4":
		outputFile = filepath.Join(tempDir, "output.mp4")
		contentType = "video/mp4"
		cmdErr = h.runFfmpeg(r.Context(),
			"-framerate", strconv.Itoa(fps),
			"-i", frames,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-crf", "18",
			"-preset", "fast",
			"-movflags", "+faststart",
			outputFile,
		)

	case "gif":
		outputFile = filepath.Join(tempDir, "output.gif")
		contentType = "image/gif"
		// Two-pass GIF: generate palette then apply
		palettePath := filepath.Join(tempDir, "palette.png")
		cmdErr = h.runFfmpeg(r.Context(),
			"-framerate", strconv.Itoa(fps),
			"-i", frames,
			"-vf", "palettegen=stats_mode=diff",
			palettePath,
		)
		if cmdErr == nil {
			cmdErr = h.runFfmpeg(r.Context(),
				"-framerate", strconv.Itoa(fps),
				"-i", frames,
				"-i", palettePath,
				"-lavfi", "paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
				outputFile,
			)
		}

	case "webm":
		outputFile = filepath.Join(tempDir, "output.webm")
		contentType = "video/webm"
		cmdErr = h.runFfmpeg(r.Context(),
			"-framerate", strconv.Itoa(fps),
			"-i", frames,
			"-c:v", "libvpx-vp9",
			"-crf", "30",
			"-b:v", "0",
			"-pix_fmt", "yuva420p",
			outputFile,
		)
	}

	if cmdErr != nil {
		slog.Error("ffmpeg failed", "export", exportID, "error", cmdErr)
		http.Error(w, fmt.Sprintf("encoding failed: %v", cmdErr), http.StatusInternalServerError)
		return
	}

	outFile, err := os.Open(outputFile)
	if err != nil {
		slog.Error("open output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	stat, err := outFile.Stat()
	if err != nil {
		slog.Error("stat output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	w.Header().Set("X-Export-ID", exportID)
	io.Copy(w, outFile)

	slog.Info("export complete", "export", exportID, "format", format, "size", stat.Size())
}

func (h *Handler) size(r *http.Request) (int, int, error) {
	width, height := h.Width, h.Height
	for _, p := range []struct {
		key string
		dst *int
	}{{"width", &width}, {"height", &height}} {
		s := r.URL.Query().Get(p.key)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > maxImageSize {
			return 0, 0, fmt.Errorf("%s must be between 1 and %d", p.key, maxImageSize)
		}
		*p.dst = v
	}
	return width, height, nil
}

func (h *Handler) runFfmpeg(ctx context.Context, args ...string) error {
	// Prepend -y to overwrite output without prompting
	fullArgs := append([]string{"-y"}, args...)
	cmd := exec.CommandContext(ctx, h.ffmpegPath, fullArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v: %s", err, stderr.String())
	}
	return nil
}

func sanitize(name string) string {
	if name == "" {
		return "spider"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
