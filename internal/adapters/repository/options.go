package repository

import (
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used to report skipped records.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFileName overrides the file name used for one category.
func WithFileName(category model.Category, name string) Option {
	return func(s *FileStore) {
		if i := category.Index(); i >= 0 && name != "" {
			s.names[i] = name
		}
	}
}

// WithMaxRecordSize bounds the size in bytes of a single stored line.
func WithMaxRecordSize(size int) Option {
	return func(s *FileStore) {
		if size > 0 {
			s.maxRecordSize = size
		}
	}
}
