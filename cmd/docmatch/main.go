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

// Command docmatch queries and modifies documents with MongoDB-style filters and update expressions.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FerretDB/docmatch/build/version"
	"github.com/FerretDB/docmatch/internal/util/ctxutil"
	"github.com/FerretDB/docmatch/internal/util/debugbuild"
	"github.com/FerretDB/docmatch/internal/util/logging"
	"github.com/FerretDB/docmatch/internal/util/must"
	"github.com/FerretDB/docmatch/internal/util/observability"
)

// The cliFlags struct represents all command-line commands, fields and flags.
// It's used for parsing the user input.
//
//nolint:lll,vet // for readability
type cliFlags struct {
	Backend    string `default:"memory" help:"${help_backend}" enum:"${enum_backend}"`
	SQLitePath string `default:""       help:"SQLite database file for 'sqlite' backend; in-memory database if empty." name:"sqlite-path"`
	Load       string `default:""       help:"Extended JSON file with an array of documents to insert first."`
	DB         string `default:"test"   help:"Database name." name:"db"`
	Collection string `default:"docs"   help:"Collection name."`

	Log struct {
		Level string `default:"${default_log_level}" help:"${help_log_level}" enum:"${enum_log_level}"`
		UUID  bool   `default:"false"                help:"Add instance UUID to all log messages." negatable:""`
	} `embed:"" prefix:"log-"`

	OtelEndpoint string `default:"" help:"OTLP HTTP endpoint (host:port) for traces; disabled if empty." name:"otel-endpoint"`
	DumpMetrics  bool   `default:"false" help:"Dump metrics to stderr on exit."`

	Find struct {
		Filter     string `arg:"" optional:"" help:"Filter document."`
		Sort       string `default:""         help:"Sort document."`
		Projection string `default:""         help:"Projection document or array of field names."`
		Skip       int64  `default:"0"        help:"Number of documents to skip."`
		Limit      int64  `default:"0"        help:"Maximum number of documents; 0 means no limit."`
	} `cmd:"" help:"Print documents matching the filter."`

	Count struct {
		Filter string `arg:"" optional:"" help:"Filter document."`
	} `cmd:"" help:"Print the number of documents matching the filter."`

	Update struct {
		Filter string `arg:"" help:"Filter document."`
		Update string `arg:"" help:"Update expression or replacement document."`
		Multi  bool   `default:"false" help:"Update all matching documents."`
		Upsert bool   `default:"false" help:"Insert a document if nothing matches."`
	} `cmd:"" help:"Update documents matching the filter."`

	Delete struct {
		Filter string `arg:"" help:"Filter document."`
		Multi  bool   `default:"false" help:"Delete all matching documents."`
	} `cmd:"" help:"Delete documents matching the filter."`

	Insert struct {
		Docs []string `arg:"" name:"doc" help:"Documents to insert."`
	} `cmd:"" help:"Insert documents."`

	Distinct struct {
		Key    string `arg:"" help:"Field name."`
		Filter string `arg:"" optional:"" help:"Filter document."`
	} `cmd:"" help:"Print distinct values of the field."`

	Aggregate struct {
		Pipeline string `arg:"" help:"Array of pipeline stages."`
	} `cmd:"" help:"Run the aggregation pipeline."`

	Version struct{} `cmd:"" help:"Print version to stdout and exit."`
}

var cli cliFlags

// Additional variables for the kong parsers.
var (
	backends = []string{"memory", "sqlite"}

	logLevels = []string{
		zap.DebugLevel.String(),
		zap.InfoLevel.String(),
		zap.WarnLevel.String(),
		zap.ErrorLevel.String(),
	}

	kongOptions = []kong.Option{
		kong.Vars{
			"default_log_level": defaultLogLevel().String(),

			"enum_backend":   strings.Join(backends, ","),
			"enum_log_level": strings.Join(logLevels, ","),

			"help_backend":   fmt.Sprintf("Backend: '%s'.", strings.Join(backends, "', '")),
			"help_log_level": fmt.Sprintf("Log level: '%s'.", strings.Join(logLevels, "', '")),
		},
		kong.DefaultEnvars("DOCMATCH"),
	}
)

func main() {
	kongCtx := kong.Parse(&cli, kongOptions...)

	if err := run(kongCtx.Command()); err != nil {
		log.Fatal(err)
	}
}

// defaultLogLevel returns the default log level.
func defaultLogLevel() zapcore.Level {
	if version.Get().DebugBuild {
		return zap.DebugLevel
	}

	return zap.WarnLevel
}

// setupLogger setups zap logger.
func setupLogger() *zap.Logger {
	info := version.Get()

	startupFields := []zap.Field{
		zap.String("version", info.Version),
		zap.String("commit", info.Commit),
		zap.Bool("dirty", info.Dirty),
		zap.Bool("debugBuild", info.DebugBuild),
		zap.Any("buildEnvironment", info.BuildEnvironment),
	}
	logUUID := uuid.NewString()

	// Unless requested, don't add UUID to all messages, but log it once at startup.
	if !cli.Log.UUID {
		startupFields = append(startupFields, zap.String("uuid", logUUID))
		logUUID = ""
	}

	level, err := zapcore.ParseLevel(cli.Log.Level)
	if err != nil {
		log.Fatal(err)
	}

	l := logging.Setup(level, logUUID)

	l.Info("Starting docmatch "+info.Version+"...", startupFields...)

	if debugbuild.Enabled {
		l.Info("This is debug build. The performance will be affected.")
	}

	return l
}

// dumpMetrics writes metric families in the Prometheus text format.
func dumpMetrics(w io.Writer, mfs []*dto.MetricFamily) {
	for _, mf := range mfs {
		must.NotFail(expfmt.MetricFamilyToText(w, mf))
	}
}

// printVersion prints build information.
func printVersion(w io.Writer) {
	info := version.Get()

	fmt.Fprintln(w, "version:", info.Version)
	fmt.Fprintln(w, "commit:", info.Commit)
	fmt.Fprintln(w, "dirty:", info.Dirty)
	fmt.Fprintln(w, "debugBuild:", info.DebugBuild)
}

// run sets up environment based on provided flags and runs the command.
func run(command string) error {
	if command == "version" {
		printVersion(os.Stdout)
		return nil
	}

	// to increase a chance of resource finalizers to spot problems
	if debugbuild.Enabled {
		defer func() {
			runtime.GC()
			runtime.GC()
		}()
	}

	logger := setupLogger()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Sugar().Warnf("Failed to set GOMAXPROCS: %s.", err)
	}

	ctx, stop := ctxutil.SigTerm(context.Background())
	defer stop()

	shutdown, err := observability.SetupOtel("docmatch", version.Get().Version, cli.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry: %w", err)
	}

	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down OpenTelemetry", zap.Error(err))
		}
	}()

	s, err := openStore(ctx, &cli, logger)
	if err != nil {
		return err
	}

	defer s.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(s)

	if cli.DumpMetrics {
		defer func() {
			dumpMetrics(os.Stderr, must.NotFail(reg.Gather()))
		}()
	}

	return runCommand(ctx, &cli, command, s, os.Stdout)
}
