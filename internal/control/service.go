package control

import (
	"context"
	"errors"
	"fmt"

	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid request")
	ErrUnavailable = errors.New("engine unavailable")
)

// Runner executes functions against the live engine on its owning goroutine.
type Runner interface {
	Do(ctx context.Context, fn func(e *engine.Engine)) error
	Apply(ctx context.Context, in engine.Intent) (engine.State, error)
}

type Service struct {
	runner Runner
}

func NewService(runner Runner) *Service {
	return &Service{runner: runner}
}

func (s *Service) State(ctx context.Context) (engine.State, error) {
	var st engine.State
	if err := s.do(ctx, func(e *engine.Engine) { st = e.State() }); err != nil {
		return engine.State{}, err
	}
	return st, nil
}

func (s *Service) Joints(ctx context.Context) ([]engine.JointState, error) {
	var joints []engine.JointState
	if err := s.do(ctx, func(e *engine.Engine) { joints = e.Joints() }); err != nil {
		return nil, err
	}
	return joints, nil
}

// Apply runs one intent and returns the resulting state.
func (s *Service) Apply(ctx context.Context, in engine.Intent) (engine.State, error) {
	st, err := s.runner.Apply(ctx, in)
	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, engine.ErrInvalidIntent):
		return engine.State{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	default:
		return engine.State{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// ApplyPose applies the named library pose.
func (s *Service) ApplyPose(ctx context.Context, name string) (engine.State, error) {
	var (
		st      engine.State
		poseErr error
	)
	err := s.do(ctx, func(e *engine.Engine) {
		p, err := e.Poses().Get(name)
		if err != nil {
			poseErr = err
			return
		}
		e.ApplyPose(p)
		st = e.State()
	})
	if err != nil {
		return engine.State{}, err
	}
	if poseErr != nil {
		return engine.State{}, fmt.Errorf("%w: %w", ErrNotFound, poseErr)
	}
	return st, nil
}

// Poses returns the loaded pose library as a document.
func (s *Service) Poses(ctx context.Context) (*document.Document, error) {
	var doc *document.Document
	if err := s.do(ctx, func(e *engine.Engine) { doc = document.FromLibrary(e.Poses()) }); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) do(ctx context.Context, fn func(e *engine.Engine)) error {
	if err := s.runner.Do(ctx, fn); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
