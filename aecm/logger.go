package aecm

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is used for state-machine transitions this package considers
// noteworthy: delay lock/loss, channel promotion/reset, and the frame
// wrapper leaving startup. It defaults to stderr; callers may replace it
// (e.g. with a no-op logger, or one routed through their own handler) by
// assigning a different *log.Logger before use.
var Logger = log.New(os.Stderr)
