package quill

import (
	"log/slog"
	"time"
)

// debugStats holds per-tick phase timings. Only populated when the scene
// runs in debug mode.
type debugStats struct {
	animateTime time.Duration
	updateTime  time.Duration
	resolveTime time.Duration
	deliverTime time.Duration
	entryCount  int
	itemCount   int
}

func (d debugStats) total() time.Duration {
	return d.animateTime + d.updateTime + d.resolveTime + d.deliverTime
}

// debugLog logs timing stats for frame at Debug level.
func (s *Scene) debugLog(frame int, stats debugStats) {
	if !s.debug {
		return
	}
	s.log.Debug("tick",
		"frame", frame,
		"animate", stats.animateTime,
		"update", stats.updateTime,
		"resolve", stats.resolveTime,
		"deliver", stats.deliverTime,
		"total", stats.total(),
		"entries", stats.entryCount,
		"items", stats.itemCount,
	)
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(l *slog.Logger, m *Mobject) {
	depth := 0
	for p := m; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		l.Warn("tree depth exceeds threshold",
			"mobject", m.label(), "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a mobject has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(l *slog.Logger, m *Mobject) {
	if len(m.children) > debugMaxChildCount {
		l.Warn("child count exceeds threshold",
			"mobject", m.label(), "children", len(m.children), "threshold", debugMaxChildCount)
	}
}
