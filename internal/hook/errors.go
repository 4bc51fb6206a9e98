package hook

import "errors"

// ErrAlreadyUnhooked is returned when a Handle is unhooked twice.
var ErrAlreadyUnhooked = errors.New("hook already unhooked")

// ErrHookNotFound is returned when removing a callback that is no longer registered.
var ErrHookNotFound = errors.New("hook not found")

// ErrTooManyHooks is returned when a registration would exceed either
// maxCallbacksPerHook or maxTotalCallbacks.
var ErrTooManyHooks = errors.New("hook limit exceeded")

// ErrEmptyHookName is returned when registering against an empty name.
var ErrEmptyHookName = errors.New("empty hook name")

// ErrNilCallback is returned when registering a nil callback.
var ErrNilCallback = errors.New("nil callback")
