package events

import "github.com/atomicstack/vislevel/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Source(kind, detail string) {
	logging.Trace("app.source", map[string]interface{}{"source": kind, "detail": detail})
}

func (AppTracer) Dump(format string, levels int) {
	logging.Trace("app.dump", map[string]interface{}{"format": format, "levels": levels})
}

func (AppTracer) Exit(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("app.exit", payload)
}
