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

// Package setup provides integration tests setup helpers.
package setup

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/FerretDB/docmatch/docmatch"
	"github.com/FerretDB/docmatch/integration/shareddata"
	"github.com/FerretDB/docmatch/internal/util/observability"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

// Flags.
var (
	targetBackendF = flag.String("target-backend", "memory", "target backend: '"+strings.Join(allBackends, "', '")+"'")
	sqliteDirF     = flag.String("sqlite-dir", "", "directory for SQLite database files; if empty, in-memory databases are used")

	// Disable noisy setup logs by default.
	debugSetupF = flag.Bool("debug-setup", false, "enable debug logs for tests setup")
	logLevelF   = zap.LevelFlag("log-level", zap.DebugLevel, "log level for tests")
)

// allBackends contains names of all backends.
var allBackends = []string{"memory", "sqlite"}

// SetupOpts represents setup options.
type SetupOpts struct {
	// Database to use. If empty, "test" is used.
	DatabaseName string

	// Collection to use. If empty, test-specific collection name is used.
	// Most tests should keep this empty.
	CollectionName string

	// Data providers. If empty, collection is not created.
	Providers []shareddata.Provider
}

// SetupResult represents setup results.
type SetupResult struct {
	Ctx        context.Context
	Store      *docmatch.Store
	Collection *docmatch.Collection
}

// SetupWithOpts setups the test according to given options.
//
// Each test gets its own store that is closed on cleanup.
func SetupWithOpts(tb testing.TB, opts *SetupOpts) *SetupResult {
	tb.Helper()

	ctx, cancel := context.WithCancel(testutil.Ctx(tb))

	setupCtx, span := otel.Tracer("").Start(ctx, "SetupWithOpts")
	defer span.End()

	if opts == nil {
		opts = new(SetupOpts)
	}

	require.Contains(tb, allBackends, *targetBackendF)

	level := zap.NewAtomicLevelAt(zap.ErrorLevel)
	if *debugSetupF {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger := testutil.LevelLogger(tb, level)

	config := &docmatch.Config{
		Backend: *targetBackendF,
		Logger:  logger,
	}

	if *targetBackendF == "sqlite" && *sqliteDirF != "" {
		config.SQLiteURI = "file:" + filepath.Join(*sqliteDirF, testutil.CollectionName(tb)+".sqlite")
	}

	store, err := docmatch.Open(setupCtx, config)
	require.NoError(tb, err)

	tb.Cleanup(store.Close)
	tb.Cleanup(cancel)

	collection := setupCollection(tb, setupCtx, store, opts)

	level.SetLevel(*logLevelF)

	return &SetupResult{
		Ctx:        ctx,
		Store:      store,
		Collection: collection,
	}
}

// Setup setups a single collection for all providers, if they are present.
func Setup(tb testing.TB, providers ...shareddata.Provider) (context.Context, *docmatch.Collection) {
	tb.Helper()

	s := SetupWithOpts(tb, &SetupOpts{
		Providers: providers,
	})
	return s.Ctx, s.Collection
}

// setupCollection setups a single collection for all providers, if they are present.
func setupCollection(tb testing.TB, ctx context.Context, store *docmatch.Store, opts *SetupOpts) *docmatch.Collection {
	tb.Helper()

	ctx, span := otel.Tracer("").Start(ctx, "setupCollection")
	defer span.End()

	defer observability.FuncCall(ctx)()

	databaseName := opts.DatabaseName
	if databaseName == "" {
		databaseName = "test"
	}

	collectionName := opts.CollectionName
	if collectionName == "" {
		collectionName = testutil.CollectionName(tb)
	}

	collection := store.Collection(databaseName, collectionName)

	// drop remnants of the previous failed run
	require.NoError(tb, collection.Drop(ctx))

	if len(opts.Providers) == 0 {
		tb.Logf("Collection %s.%s wasn't created because no providers were set.", databaseName, collectionName)
		return collection
	}

	require.True(tb, insertProviders(tb, ctx, collection, opts.Providers...))

	return collection
}

// insertProviders inserts documents from specified Providers into collection.
// It returns true if any document was inserted.
func insertProviders(tb testing.TB, ctx context.Context, collection *docmatch.Collection, providers ...shareddata.Provider) (inserted bool) {
	tb.Helper()

	names := make([]string, 0, len(providers))

	for _, provider := range providers {
		require.False(tb, slices.Contains(names, provider.Name()), "duplicate provider %q", provider.Name())
		names = append(names, provider.Name())

		spanName := fmt.Sprintf("insertProviders/%s/%s", collection.Name(), provider.Name())
		provCtx, span := otel.Tracer("").Start(ctx, spanName)

		docs := shareddata.Docs(provider)
		require.NotEmpty(tb, docs)

		res, err := collection.InsertMany(provCtx, docs)
		require.NoError(tb, err, "provider %q", provider.Name())
		require.Len(tb, res.InsertedIDs, len(docs))
		inserted = true

		span.End()
	}

	return
}
