package detect

import (
	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/board"
	"github.com/ysenez/openboard/pkg/geom"
)

// Chain tries a primary detector and falls back to a secondary one when the
// primary fails. Detection errors never escape Check: if both strategies
// fail the cell is reported fully empty with a warning, and allocation
// proceeds on that answer.
type Chain struct {
	primary   Checker
	secondary Checker
	logger    *log.Logger
}

// NewChain composes primary and secondary into a single Checker.
func NewChain(primary, secondary Checker, logger *log.Logger) *Chain {
	return &Chain{primary: primary, secondary: secondary, logger: logger}
}

func (c *Chain) Check(cell geom.AABB, cellType board.CellType) (Result, error) {
	res, err := c.primary.Check(cell, cellType)
	if err == nil {
		return res, nil
	}
	c.logger.Debug("primary detection failed, falling back", "error", err)

	res, err = c.secondary.Check(cell, cellType)
	if err == nil {
		return res, nil
	}
	c.logger.Warn("all detection strategies failed, treating cell as empty", "error", err)
	return Result{LeftEmpty: true, RightEmpty: true}, nil
}
