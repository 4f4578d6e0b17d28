// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package docmatch

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/backends/memory"
	"github.com/FerretDB/docmatch/internal/backends/sqlite"
	"github.com/FerretDB/docmatch/internal/handler"
	"github.com/FerretDB/docmatch/internal/util/logging"
)

// Config represents docmatch store configuration.
type Config struct {
	// Backend to use; one of `memory` (default) or `sqlite`.
	Backend string

	// SQLite database URI for `sqlite` backend.
	// If empty, a private in-memory database is used.
	SQLiteURI string // For example: `file:/var/lib/docmatch/data.sqlite`.

	// Logger to use; if nil, logging is disabled.
	Logger *zap.Logger
}

// Store represents an instance of embeddable document store.
//
// It is safe for concurrent use.
type Store struct {
	b backends.Backend
	h *handler.Handler
	l *zap.Logger
}

// Open creates a new store with the given configuration.
func Open(ctx context.Context, config *Config) (*Store, error) {
	if config == nil {
		config = new(Config)
	}

	l := config.Logger
	if l == nil {
		l = zap.NewNop()
	}

	var b backends.Backend

	switch config.Backend {
	case "", "memory":
		b = memory.NewBackend(&memory.NewBackendParams{
			L: l.Named("memory"),
		})

	case "sqlite":
		uri := config.SQLiteURI
		if uri == "" {
			uri = sqlite.MemoryURI
		}

		var err error
		if b, err = sqlite.NewBackend(ctx, &sqlite.NewBackendParams{
			URI: uri,
			L:   logging.SLogger(l.Named("sqlite")),
		}); err != nil {
			// Do not expose internal error details.
			return nil, fmt.Errorf("failed to open sqlite backend: %s", err)
		}

	default:
		return nil, fmt.Errorf("unknown backend %q", config.Backend)
	}

	h, err := handler.New(&handler.NewOpts{
		Backend: b,
		L:       l.Named("handler"),
	})
	if err != nil {
		b.Close()
		return nil, publicError(err)
	}

	return &Store{
		b: b,
		h: h,
		l: l,
	}, nil
}

// Close closes all cursors and the backend.
func (s *Store) Close() {
	s.h.Close()
	s.b.Close()
}

// Collection returns a collection handle.
// The collection is created on the first insert.
func (s *Store) Collection(db, name string) *Collection {
	return &Collection{
		s:    s,
		db:   db,
		name: name,
	}
}

// ListDatabases returns sorted names of databases with at least one collection.
func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	res, err := s.h.ListDatabases(ctx)
	return res, publicError(err)
}

// ListCollections returns sorted names of the database's collections.
func (s *Store) ListCollections(ctx context.Context, db string) ([]string, error) {
	res, err := s.h.ListCollections(ctx, db)
	return res, publicError(err)
}

// CreateCollection creates an empty collection.
//
// It returns a *CommandError with code 48 (NamespaceExists) if the collection already exists.
func (s *Store) CreateCollection(ctx context.Context, db, name string) error {
	return publicError(s.h.CreateCollection(ctx, db, name))
}

// DropDatabase drops the database with all its collections.
// Dropping a non-existent database is not an error.
func (s *Store) DropDatabase(ctx context.Context, db string) error {
	return publicError(s.h.DropDatabase(ctx, db))
}

// Describe implements prometheus.Collector.
func (s *Store) Describe(ch chan<- *prometheus.Desc) {
	s.h.Describe(ch)

	if c, ok := s.b.(prometheus.Collector); ok {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (s *Store) Collect(ch chan<- prometheus.Metric) {
	s.h.Collect(ch)

	if c, ok := s.b.(prometheus.Collector); ok {
		c.Collect(ch)
	}
}

// check interfaces
var (
	_ prometheus.Collector = (*Store)(nil)
)
