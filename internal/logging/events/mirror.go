package events

import "github.com/atomicstack/vislevel/internal/logging"

type MirrorTracer struct{}

var Mirror = MirrorTracer{}

func (MirrorTracer) Apply(sessions, created, removed, selections int) {
	logging.Trace("mirror.apply", map[string]interface{}{
		"sessions":   sessions,
		"created":    created,
		"removed":    removed,
		"selections": selections,
	})
}

func (MirrorTracer) Rebuild(level string, items []string) {
	logging.Trace("mirror.rebuild", map[string]interface{}{"level": level, "items": items})
}

func (MirrorTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("mirror.error", map[string]interface{}{"error": err.Error()})
}
