package fields

import (
	"context"
	"log/slog"
)

// Transition tracing is debug-only and off the read path entirely;
// only the writer side emits.

func (sp *Space) traceTransition(o *Owner, next *Shape, name string) {
	if !sp.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	sp.log.Debug("shape transition",
		"owner", o.name,
		"attr", name,
		"fields", next.fieldsCount,
		"capacity", next.capacity,
	)
}

func (sp *Space) traceDemotion(o *Owner, from *Shape) {
	if !sp.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	sp.log.Debug("lineage demoted to map mode",
		"owner", o.name,
		"fields", from.fieldsCount,
		"max_variations", sp.tuning.MaxVariations,
	)
}
