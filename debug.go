package marks

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// updateStats holds per-pass timing and size metrics. Counters are atomic
// because the parallel updater fills them from worker goroutines.
type updateStats struct {
	bind     time.Duration
	build    time.Duration
	evaluate time.Duration

	rebuilt     atomic.Int64
	groups      atomic.Int64
	items       atomic.Int64
	transitions atomic.Int64
}

// UpdateStats is a snapshot of the metrics of one update pass.
type UpdateStats struct {
	Bind, Build, Evaluate time.Duration

	// Rebuilt counts marks whose evaluator was rebuilt because their
	// property set changed.
	Rebuilt     int
	Groups      int
	Items       int
	Transitions int
}

func (st *updateStats) snapshot() UpdateStats {
	return UpdateStats{
		Bind:        st.bind,
		Build:       st.build,
		Evaluate:    st.evaluate,
		Rebuilt:     int(st.rebuilt.Load()),
		Groups:      int(st.groups.Load()),
		Items:       int(st.items.Load()),
		Transitions: int(st.transitions.Load()),
	}
}

// debugLog reports a finished pass at Debug level.
func (s *Scene) debugLog(st UpdateStats) {
	l := s.engine.logger
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("update pass",
		"scene", s.name,
		"updater", s.engine.updaterKind.String(),
		"evaluator", s.engine.evalKind.String(),
		"bind", st.Bind,
		"build", st.Build,
		"evaluate", st.Evaluate,
		"total", st.Bind+st.Build+st.Evaluate,
	)
	l.Debug("update size",
		"scene", s.name,
		"groups", st.Groups,
		"items", st.Items,
		"rebuilt", st.Rebuilt,
		"transitions", st.Transitions,
	)
}

// debugMaxGroupSize is the group size above which debug mode warns.
const debugMaxGroupSize = 100_000

// debugCheckGroups warns about oversized groups reachable from panel.
func (s *Scene) debugCheckGroups(panel *Item, depth int) {
	for _, g := range panel.Layers {
		if g == nil {
			continue
		}
		if len(g.Items) > debugMaxGroupSize {
			s.engine.logger.Warn("large group",
				"scene", s.name, "mark", g.typ.String(), "items", len(g.Items), "threshold", debugMaxGroupSize)
		}
		if g.typ != MarkPanel || depth > debugMaxPanelDepth {
			continue
		}
		for _, it := range g.Items {
			if it != nil {
				s.debugCheckGroups(it, depth+1)
			}
		}
	}
}

// debugMaxPanelDepth bounds the panel nesting inspected by debugCheckGroups.
const debugMaxPanelDepth = 32
