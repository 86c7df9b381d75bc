// Package plugin registers optional capability sets as namespaced commands.
package plugin

import (
	"fmt"

	"chroma/internal/commands"
	"chroma/internal/logger"
)

// Plugin contributes commands named plugin:<name>|<command>.
type Plugin interface {
	Name() string
	Register(r *commands.Registry) error
}

func CommandName(plugin, command string) string {
	return fmt.Sprintf("plugin:%s|%s", plugin, command)
}

// RegisterAll registers plugins in order and stops at the first failure.
func RegisterAll(r *commands.Registry, log logger.Logger, plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p.Register(r); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		log.Debug("Plugins", "plugin registered", map[string]interface{}{
			"plugin": p.Name(),
		})
	}
	return nil
}
