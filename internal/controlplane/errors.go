package controlplane

import "errors"

// Sentinel errors for control plane operations.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrNotActive      = errors.New("session is not the active session")
	ErrTaskHasSession = errors.New("task has an active session")
)
