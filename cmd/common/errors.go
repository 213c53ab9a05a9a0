package common

import "errors"

var (
	// ErrLoggerRequired is returned when CommandDeps.Logger is nil
	ErrLoggerRequired = errors.New("logger is required")

	// ErrConfigRequired is returned when CommandDeps.Config is nil
	ErrConfigRequired = errors.New("config is required")

	// ErrRuntimeRequired is returned when CommandDeps.Runtime is nil
	ErrRuntimeRequired = errors.New("runtime is required")
)
