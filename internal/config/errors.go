package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps file and environment provider failures.
	ErrLoadConfig = errors.New("load config failed")
	// ErrUnknownStore names a store backend other than file, sqlite or memory.
	ErrUnknownStore = fmt.Errorf("%w: unknown store", ErrInvalidConfig)
)
