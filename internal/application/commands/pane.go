package commands

import (
	"context"

	"colljump/internal/application"
	"colljump/internal/ports"
)

// StaticPane is a ports.Pane for callers without a live window. It reports a
// fixed active library and cannot select anything. A zero LibraryID means
// no library is active.
type StaticPane struct {
	LibraryID int64
}

var _ ports.Pane = StaticPane{}

func (p StaticPane) ActiveLibraryID() (int64, bool) {
	return p.LibraryID, p.LibraryID != 0
}

func (p StaticPane) SwitchLibrary(context.Context, int64) error {
	return application.ErrStrategyUnavailable
}

func (p StaticPane) SelectCollection(context.Context, int64) error {
	return application.ErrStrategyUnavailable
}
