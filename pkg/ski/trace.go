package ski

import (
	"log"
	"os"
	"sync/atomic"
)

// Opt-in tracing of normalizer decisions: memo hits, cycle proofs,
// speculation and budget exhaustion. Enable by setting GOSKI_TRACE=1 or by
// setting Config.Trace (which flips the global flag when the normalizer is
// constructed).

var traceEnabled atomic.Bool

func init() {
	if os.Getenv("GOSKI_TRACE") == "1" {
		traceEnabled.Store(true)
	}
}

func enableTrace()  { traceEnabled.Store(true) }
func disableTrace() { traceEnabled.Store(false) }

func tracef(format string, args ...any) {
	if !traceEnabled.Load() {
		return
	}
	log.Printf("[NF] "+format, args...)
}
