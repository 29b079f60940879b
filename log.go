package bag

import (
	"io"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// diagLogger is the logger type the bag calls, an alias of
// *logiface.Logger[*izerolog.Event]. A nil *logiface.Logger is valid and logs nothing (see
// (*Logger[E]).canWrite), so a zero-value Config needs no logger setup.
type diagLogger = *logiface.Logger[*izerolog.Event]

// NewLogger builds the default diagnostic logger, writing newline-delimited
// JSON to w. Pass the result as Config.Logger. All bag diagnostics (dumpState
// output and borrow-path tracing) go through this one writer.
func NewLogger(w io.Writer) diagLogger {
	return izerolog.L.New(izerolog.L.WithZerolog(zerolog.New(w)))
}
