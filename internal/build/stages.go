package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/export"
	"github.com/annieversary/sorg/internal/logfields"
	"github.com/annieversary/sorg/internal/orgdoc"
	"github.com/annieversary/sorg/internal/render"
	"github.com/annieversary/sorg/internal/site"
)

// Stage is a discrete unit of work in a site build.
type Stage func(ctx context.Context, st *State) error

// stageDef pairs a stage with its log name.
type stageDef struct {
	name string
	fn   Stage
}

// State carries everything the stages produce and consume. A fresh
// State is made for every build; watch rebuilds never reuse one.
type State struct {
	Options config.Options

	Doc    *orgdoc.Document
	Config *config.Config
	Tree   *site.Page
	Macros *export.Macros
	Engine *render.Engine

	log *slog.Logger
}

// runStages executes the stages in order, logging the duration of each
// and stopping at the first error or context cancellation.
func runStages(ctx context.Context, st *State, stages []stageDef) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.CategoryInternal, errors.SeverityFatal, "build canceled")
		default:
		}

		t0 := time.Now()
		if err := stage.fn(ctx, st); err != nil {
			st.log.Error("stage failed", logfields.Stage(stage.name), logfields.Error(err))
			return err
		}
		st.log.Debug("stage done",
			logfields.Stage(stage.name),
			logfields.DurationMS(float64(time.Since(t0).Microseconds())/1000))
	}
	return nil
}
