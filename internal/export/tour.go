package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/render"
)

// tour is a captured pose loop: each pose eases into the next and the last
// eases back into the first.
type tour struct {
	poses  []engine.Pose
	view   engine.Quaternion
	steps  int
	easing engine.Easing
	width  int
	height int
	camera render.Camera
}

// Len returns the number of frames the tour renders.
func (t tour) Len() int {
	return len(t.poses) * t.steps
}

// write renders the tour into dir as frame_0000.png, frame_0001.png, ...
// on a scratch engine built around rig.
func (t tour) write(ctx context.Context, dir string, rig *engine.Rig) (int, error) {
	if len(t.poses) == 0 {
		return 0, errors.New("tour has no poses")
	}
	lib, err := engine.NewPoseLibrary(t.poses[0].Name(), t.poses...)
	if err != nil {
		return 0, err
	}
	e := engine.NewEngine(rig, lib, engine.Options{Logger: slog.New(slog.DiscardHandler)})
	e.SetView(t.view)

	r := render.NewRasterRenderer(t.width, t.height, t.camera)
	frame := 0
	for i, from := range t.poses {
		to := t.poses[(i+1)%len(t.poses)]
		for s := range t.steps {
			if err := ctx.Err(); err != nil {
				return frame, err
			}
			e.ApplyPose(engine.TweenPoses(from, to, t.easing.Apply(float64(s)/float64(t.steps))))
			r.Reset()
			e.Frame(r)
			if err := writeFrame(filepath.Join(dir, fmt.Sprintf("frame_%04d.png", frame)), r); err != nil {
				return frame, err
			}
			frame++
		}
	}
	return frame, nil
}

func writeFrame(path string, r *render.RasterRenderer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
