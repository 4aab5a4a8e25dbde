package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// JumpResult contains the result of jumping to a collection
type JumpResult struct {
	Identifier domain.Identifier
	Collection *domain.ResolvedCollection
	Report     *SelectionReport
	Message    string
}

// JumpCommand takes a raw UI value through normalization, resolution and the
// selection cascade
type JumpCommand struct {
	catalog ports.Catalog
	driver  *SelectionDriver
	logger  *log.Logger
	Raw     any
}

// NewJumpCommand creates a new JumpCommand
func NewJumpCommand(catalog ports.Catalog, driver *SelectionDriver, raw any, logger *log.Logger) *JumpCommand {
	return &JumpCommand{catalog: catalog, driver: driver, logger: logging.OrDiscard(logger), Raw: raw}
}

// Execute runs the jump. Every failure is traced before it is returned;
// callers in UI handlers only need to decide whether to close the panel.
func (c *JumpCommand) Execute(ctx context.Context) (*JumpResult, error) {
	c.logger.Debug("jump requested", "raw", domain.Describe(c.Raw))

	id, err := domain.Normalize(c.Raw)
	if err != nil {
		c.logger.Warn("jump aborted", "err", err)
		return nil, err
	}

	resolved, err := NewResolveCommand(c.catalog, id, c.logger).Execute(ctx)
	if err != nil {
		c.logger.Warn("jump aborted", "identifier", id, "err", err)
		return nil, err
	}

	report, err := c.driver.Select(ctx, *resolved)
	result := &JumpResult{Identifier: id, Collection: resolved, Report: report}
	if err != nil {
		return result, err
	}

	result.Message = fmt.Sprintf("Jumped to %s via %s", resolved.Record.Name, report.Winner)
	return result, nil
}
