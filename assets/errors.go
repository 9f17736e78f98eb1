package assets

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvironmentLoad matches (with errors.Is) any failure to fetch or decode the environment map.
	ErrEnvironmentLoad = errors.New("environment map failed to load")
	// ErrModelLoad matches (with errors.Is) any failure to fetch or decode the model.
	ErrModelLoad = errors.New("model failed to load")
	// ErrAlreadyStarted is returned by Pipeline.Start when the Pipeline has already been started.
	ErrAlreadyStarted = errors.New("asset pipeline already started")
)

// Kind identifies which asset a load concerns.
type Kind int

const (
	KindEnvironment Kind = iota
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindModel:
		return "model"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LoadError describes an asset that failed to load, from which Source, and why.
type LoadError struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s from %q: %v", e.Kind, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel error for the LoadError's Kind.
func (e *LoadError) Is(target error) bool {
	switch e.Kind {
	case KindEnvironment:
		return target == ErrEnvironmentLoad
	case KindModel:
		return target == ErrModelLoad
	}
	return false
}
