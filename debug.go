package animix

import (
	"fmt"
	"os"
	"time"
)

// tickStats holds per-tick metrics. Only populated when Mixer.debug is true.
type tickStats struct {
	actions    int
	properties int
	bindings   int
	elapsed    time.Duration
}

// debugMaxBindings is the live property-mixer count above which a warning is
// printed; it usually means roots are never uncached.
const debugMaxBindings = 1000

// debugLog prints tick stats to stderr.
func (m *Mixer) debugLog(stats tickStats) {
	if !m.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[animix] t: %.4f | actions: %d | applied: %d | bindings: %d | tick: %v\n",
		m.time, stats.actions, stats.properties, stats.bindings, stats.elapsed)
	if stats.bindings > debugMaxBindings {
		_, _ = fmt.Fprintf(os.Stderr, "[animix] warning: %d live bindings exceeds %d\n",
			stats.bindings, debugMaxBindings)
	}
}
