package menu

import (
	"chroma/internal/events"
	"chroma/internal/logger"
	"chroma/internal/metrics"
)

// EventName returns the bus event for an action, or false if it has none.
func EventName(a Action) (string, bool) {
	switch a {
	case ActionOpen:
		return events.MenuOpen, true
	case ActionSave:
		return events.MenuSave, true
	case ActionNone:
		return "", false
	}
	return "", false
}

// Router republishes menu selections on the application event bus.
type Router struct {
	bus     events.Publisher
	logger  logger.Logger
	counter metrics.IncrementalCounter
}

func NewRouter(bus events.Publisher, log logger.Logger, counter metrics.IncrementalCounter) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{bus: bus, logger: log, counter: counter}
}

func (r *Router) Route(action Action) {
	name, ok := EventName(action)
	if !ok {
		r.logger.Debug("MenuRouter", "menu selection ignored", map[string]interface{}{
			"action": action.String(),
		})
		return
	}

	// Delivery is best effort; a dropped event is only worth a warning.
	if err := r.bus.Publish(name, nil); err != nil {
		r.logger.Warning("MenuRouter", "menu event not delivered", map[string]interface{}{
			"event": name,
			"error": err.Error(),
		})
		return
	}

	if r.counter != nil {
		r.counter.Increment(action.String())
	}
	r.logger.Debug("MenuRouter", "menu event emitted", map[string]interface{}{
		"event": name,
	})
}

// RouteID routes a raw menu item id.
func (r *Router) RouteID(id string) {
	r.Route(ParseAction(id))
}
