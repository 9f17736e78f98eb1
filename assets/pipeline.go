package assets

import (
	"context"
	"fmt"
	"log/slog"
)

// Stage is the state of a Pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageLoadingEnvironment
	StageLoadingModel
	StageReady
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageLoadingEnvironment:
		return "loading environment"
	case StageLoadingModel:
		return "loading model"
	case StageReady:
		return "ready"
	case StageError:
		return "error"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Terminal returns true for stages the Pipeline never leaves.
func (s Stage) Terminal() bool {
	return s == StageReady || s == StageError
}

// ErrorText is the status shown when any asset fails to load.
const ErrorText = "Error loading model!"

// ProgressText formats model download progress for the status overlay. ok is false if the total size is unknown.
func ProgressText(loaded, total int64) (text string, ok bool) {
	if total <= 0 {
		return "", false
	}
	return fmt.Sprintf("Loading model: %d%%", loaded*100/total), true
}

// Handler receives the bytes of successfully fetched assets. A returned error fails the load as though the fetch had.
type Handler interface {
	EnvironmentLoaded(data []byte) error
	ModelLoaded(data []byte) error
}

// Reporter shows the Pipeline's progress to the user.
type Reporter interface {
	ShowStatus(text string)
	HideStatus()
}

type result struct {
	kind     Kind
	data     []byte
	err      error
	progress bool
	loaded   int64
	total    int64
}

// Pipeline loads the environment map and then, only once that's succeeded, the model. Fetches run on their own
// goroutines; their results are queued and applied by Poll (or Wait) on the caller's goroutine, so the Handler and
// Reporter are never called concurrently.
type Pipeline struct {
	EnvironmentSource string
	ModelSource       string

	fetcher  Fetcher
	handler  Handler
	reporter Reporter
	logger   *slog.Logger

	ctx     context.Context
	stage   Stage
	err     error
	results chan result
}

// NewPipeline creates an idle Pipeline. If logger is nil, slog.Default() is used.
func NewPipeline(fetcher Fetcher, handler Handler, reporter Reporter, logger *slog.Logger, environmentSource, modelSource string) *Pipeline {

	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		EnvironmentSource: environmentSource,
		ModelSource:       modelSource,
		fetcher:           fetcher,
		handler:           handler,
		reporter:          reporter,
		logger:            logger.With("component", "assets"),
		results:           make(chan result, 16),
	}

}

// Stage returns the Pipeline's current stage.
func (p *Pipeline) Stage() Stage { return p.stage }

// Err returns the *LoadError that moved the Pipeline to StageError, or nil.
func (p *Pipeline) Err() error { return p.err }

// Start begins fetching the environment map. Cancelling ctx abandons any in-flight fetch.
func (p *Pipeline) Start(ctx context.Context) error {

	if p.stage != StageIdle {
		return ErrAlreadyStarted
	}

	p.ctx = ctx
	p.stage = StageLoadingEnvironment
	p.logger.Info("loading environment map", "source", p.EnvironmentSource)
	p.fetch(KindEnvironment, p.EnvironmentSource)

	return nil

}

func (p *Pipeline) fetch(kind Kind, source string) {

	ctx := p.ctx

	go func() {

		progress := func(loaded, total int64) {
			// Progress updates are best-effort; dropping one when the queue is full is harmless.
			select {
			case p.results <- result{kind: kind, progress: true, loaded: loaded, total: total}:
			default:
			}
		}

		data, err := p.fetcher.Fetch(ctx, source, progress)

		select {
		case p.results <- result{kind: kind, data: data, err: err}:
		case <-ctx.Done():
		}

	}()

}

// Poll applies every queued fetch result without blocking. It returns true if the stage changed.
func (p *Pipeline) Poll() bool {

	changed := false

	for {
		select {
		case res := <-p.results:
			if p.apply(res) {
				changed = true
			}
		default:
			return changed
		}
	}

}

// Wait blocks, applying fetch results as they arrive, until the Pipeline reaches a terminal stage or ctx is done.
func (p *Pipeline) Wait(ctx context.Context) error {

	for !p.stage.Terminal() {

		if p.stage == StageIdle {
			return nil
		}

		select {
		case res := <-p.results:
			p.apply(res)
		case <-ctx.Done():
			return ctx.Err()
		}

	}

	return p.err

}

func (p *Pipeline) apply(res result) bool {

	if res.progress {
		// Only the model load reports progress to the user.
		if res.kind == KindModel && p.stage == StageLoadingModel {
			if text, ok := ProgressText(res.loaded, res.total); ok {
				p.reporter.ShowStatus(text)
			}
		}
		return false
	}

	switch {

	case res.kind == KindEnvironment && p.stage == StageLoadingEnvironment:

		if res.err == nil {
			res.err = p.handler.EnvironmentLoaded(res.data)
		}

		if res.err != nil {
			p.fail(&LoadError{Kind: KindEnvironment, Source: p.EnvironmentSource, Err: res.err})
			return true
		}

		p.logger.Info("environment map loaded", "source", p.EnvironmentSource, "bytes", len(res.data))

		p.stage = StageLoadingModel
		p.logger.Info("loading model", "source", p.ModelSource)
		p.fetch(KindModel, p.ModelSource)

		return true

	case res.kind == KindModel && p.stage == StageLoadingModel:

		if res.err == nil {
			res.err = p.handler.ModelLoaded(res.data)
		}

		if res.err != nil {
			p.fail(&LoadError{Kind: KindModel, Source: p.ModelSource, Err: res.err})
			return true
		}

		p.logger.Info("model loaded", "source", p.ModelSource, "bytes", len(res.data))

		p.stage = StageReady
		p.reporter.HideStatus()

		return true

	}

	return false

}

func (p *Pipeline) fail(err *LoadError) {
	p.stage = StageError
	p.err = err
	p.logger.Error("asset failed to load", "kind", err.Kind.String(), "source", err.Source, "err", err.Err)
	p.reporter.ShowStatus(ErrorText)
}
