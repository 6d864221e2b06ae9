package events

import "github.com/atomicstack/vislevel/internal/logging"

type RegistryTracer struct{}

type LevelTracer struct{}

type ItemTracer struct{}

var (
	Registry = RegistryTracer{}
	Level    = LevelTracer{}
	Item     = ItemTracer{}
)

func (RegistryTracer) Create(level, id string) {
	logging.Trace("registry.create", map[string]interface{}{"level": level, "id": id})
}

func (RegistryTracer) CreateError(level string, err error) {
	if err == nil {
		return
	}
	logging.Trace("registry.create.error", map[string]interface{}{"level": level, "error": err.Error()})
}

func (RegistryTracer) Remove(level, id string) {
	logging.Trace("registry.remove", map[string]interface{}{"level": level, "id": id})
}

func (RegistryTracer) Clear(count int) {
	logging.Trace("registry.clear", map[string]interface{}{"count": count})
}

func (LevelTracer) Declare(level, id string, names []string) {
	logging.Trace("level.declare", map[string]interface{}{"level": level, "id": id, "items": names})
}

func (LevelTracer) Visible(level, id string, visible bool) {
	logging.Trace("level.visible", map[string]interface{}{"level": level, "id": id, "visible": visible})
}

func (LevelTracer) Current(level, id, from, to string, visible bool) {
	logging.Trace("level.current", map[string]interface{}{
		"level":   level,
		"id":      id,
		"from":    from,
		"to":      to,
		"visible": visible,
	})
}

func (LevelTracer) Reset(level, id string, discarded int) {
	logging.Trace("level.reset", map[string]interface{}{"level": level, "id": id, "discarded": discarded})
}

func (ItemTracer) Create(level, item string) {
	logging.Trace("item.create", map[string]interface{}{"level": level, "item": item})
}

func (ItemTracer) Notify(level, item string, visible bool, round int) {
	logging.Trace("item.notify", map[string]interface{}{
		"level":   level,
		"item":    item,
		"visible": visible,
		"round":   round,
	})
}

// Resync records a reentrant change absorbed by an in-flight notification.
func (ItemTracer) Resync(level, item string, visible bool) {
	logging.Trace("item.resync", map[string]interface{}{"level": level, "item": item, "visible": visible})
}

func (ItemTracer) Child(level, item, child string) {
	logging.Trace("item.child", map[string]interface{}{"level": level, "item": item, "child": child})
}
