package v1

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/retracehq/retrace/sourcemaps"
)

// ControlSurface includes the methods the REST API can use to communicate
// with the rest of retrace.
type ControlSurface struct {
	Logger     logrus.FieldLogger
	SourceMaps *sourcemaps.Store
}

// NewControlSurface returns a ControlSurface over the given collaborators.
// The logger is where client error reports end up, so running without one is
// a configuration error, not something to silently tolerate.
func NewControlSurface(logger logrus.FieldLogger, store *sourcemaps.Store) (*ControlSurface, error) {
	if logger == nil {
		return nil, errors.New("a logger must be configured for the client error API")
	}
	return &ControlSurface{Logger: logger, SourceMaps: store}, nil
}
