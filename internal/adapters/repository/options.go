package repository

import (
	"github.com/okian/rehabplan/internal/domain/dedupe"
	"github.com/okian/rehabplan/pkg/logger"
)

// Default repository configuration constants.
const (
	defaultLoadConcurrency = 4
)

// Option applies a configuration option to a FileStore.
type Option func(*FileStore)

// WithLoadConcurrency bounds parallel patient file loads.
func WithLoadConcurrency(n int) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger used for skipped records.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDeduperFactory sets how a FileStore builds the per-load session
// seen-set. capacity is the number of session files found.
func WithDeduperFactory(f func(capacity int) dedupe.Deduper) Option {
	return func(s *FileStore) {
		if f != nil {
			s.newDeduper = f
		}
	}
}

// SQLOption applies a configuration option to a SQLStore.
type SQLOption func(*SQLStore)

// WithSQLLogger sets the logger used by a SQLStore.
func WithSQLLogger(l logger.Logger) SQLOption {
	return func(s *SQLStore) {
		if l != nil {
			s.log = l
		}
	}
}
