package plugin

import "errors"

var (
	// ErrStateClosed is returned when calling into an unloaded plugin.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrPluginExists is returned when a plugin name is loaded twice.
	ErrPluginExists = errors.New("plugin already loaded")

	// ErrPluginNotFound is returned by Unload for unknown names.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrPermission is raised in Lua when a plugin calls an API its
	// manifest does not grant.
	ErrPermission = errors.New("permission denied")
)
