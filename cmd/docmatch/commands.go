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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/FerretDB/docmatch/docmatch"
)

// openStore opens the store and loads documents from the file, if set.
func openStore(ctx context.Context, c *cliFlags, logger *zap.Logger) (*docmatch.Store, error) {
	config := &docmatch.Config{
		Backend: c.Backend,
		Logger:  logger,
	}

	if c.SQLitePath != "" {
		config.SQLiteURI = "file:" + c.SQLitePath
	}

	s, err := docmatch.Open(ctx, config)
	if err != nil {
		return nil, err
	}

	if c.Load == "" {
		return s, nil
	}

	if err = load(ctx, s.Collection(c.DB, c.Collection), c.Load); err != nil {
		s.Close()
		return nil, err
	}

	logger.Debug("Documents loaded", zap.String("file", c.Load))

	return s, nil
}

// load inserts documents from Extended JSON array file.
func load(ctx context.Context, coll *docmatch.Collection, file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	v, err := parseValue(string(b))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	docs, ok := v.(bson.A)
	if !ok {
		return fmt.Errorf("%s: expected array of documents, got %T", file, v)
	}

	if len(docs) == 0 {
		return nil
	}

	_, err = coll.InsertMany(ctx, docs)

	return err
}

// runCommand runs the parsed command and prints results to w.
func runCommand(ctx context.Context, c *cliFlags, command string, s *docmatch.Store, w io.Writer) error {
	coll := s.Collection(c.DB, c.Collection)

	name, _, _ := strings.Cut(command, " ")

	switch name {
	case "find":
		filter, err := parseDocument(c.Find.Filter)
		if err != nil {
			return err
		}

		opts := docmatch.Find().SetSkip(c.Find.Skip).SetLimit(c.Find.Limit)

		if c.Find.Sort != "" {
			sort, err := parseDocument(c.Find.Sort)
			if err != nil {
				return err
			}

			opts.SetSort(sort)
		}

		if c.Find.Projection != "" {
			projection, err := parseValue(c.Find.Projection)
			if err != nil {
				return err
			}

			opts.SetProjection(projection)
		}

		cur, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}

		defer cur.Close(ctx)

		for cur.Next(ctx) {
			if err = printDoc(w, cur.Current()); err != nil {
				return err
			}
		}

		return cur.Err()

	case "count":
		filter, err := parseDocument(c.Count.Filter)
		if err != nil {
			return err
		}

		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, n)

		return err

	case "update":
		filter, err := parseDocument(c.Update.Filter)
		if err != nil {
			return err
		}

		update, err := parseDocument(c.Update.Update)
		if err != nil {
			return err
		}

		opts := docmatch.Update().SetUpsert(c.Update.Upsert)

		var res *docmatch.UpdateResult

		switch {
		case len(update) == 0 || !strings.HasPrefix(update[0].Key, "$"):
			if c.Update.Multi {
				return errors.New("--multi can't be used with replacement document")
			}

			res, err = coll.ReplaceOne(ctx, filter, update, opts)
		case c.Update.Multi:
			res, err = coll.UpdateMany(ctx, filter, update, opts)
		default:
			res, err = coll.UpdateOne(ctx, filter, update, opts)
		}

		if err != nil {
			return err
		}

		out := bson.D{{"matched", res.MatchedCount}, {"modified", res.ModifiedCount}}
		if res.UpsertedID != nil {
			out = append(out, bson.E{"upsertedId", res.UpsertedID})
		}

		return printDoc(w, out)

	case "delete":
		filter, err := parseDocument(c.Delete.Filter)
		if err != nil {
			return err
		}

		var res *docmatch.DeleteResult
		if c.Delete.Multi {
			res, err = coll.DeleteMany(ctx, filter)
		} else {
			res, err = coll.DeleteOne(ctx, filter)
		}

		if err != nil {
			return err
		}

		return printDoc(w, bson.D{{"deleted", res.DeletedCount}})

	case "insert":
		docs := make([]any, len(c.Insert.Docs))

		for i, s := range c.Insert.Docs {
			d, err := parseDocument(s)
			if err != nil {
				return err
			}

			docs[i] = d
		}

		res, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return err
		}

		return printDoc(w, bson.D{{"insertedIds", bson.A(res.InsertedIDs)}})

	case "distinct":
		filter, err := parseDocument(c.Distinct.Filter)
		if err != nil {
			return err
		}

		values, err := coll.Distinct(ctx, c.Distinct.Key, filter)
		if err != nil {
			return err
		}

		return printDoc(w, bson.D{{"values", bson.A(values)}})

	case "aggregate":
		v, err := parseValue(c.Aggregate.Pipeline)
		if err != nil {
			return err
		}

		pipeline, ok := v.(bson.A)
		if !ok {
			return fmt.Errorf("pipeline must be an array, got %T", v)
		}

		docs, err := coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}

		for _, d := range docs {
			if err = printDoc(w, d); err != nil {
				return err
			}
		}

		return nil

	default:
		panic(fmt.Sprintf("unknown command %q", command))
	}
}

// parseDocument parses Extended JSON document; empty string is nil document.
func parseDocument(s string) (bson.D, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(s), false, &d); err != nil {
		return nil, fmt.Errorf("invalid document %q: %w", s, err)
	}

	return d, nil
}

// parseValue parses any Extended JSON value, including arrays.
func parseValue(s string) (any, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(`{"v":`+s+`}`), false, &d); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", s, err)
	}

	return d[0].Value, nil
}

// printDoc writes the document as a line of relaxed Extended JSON.
func printDoc(w io.Writer, doc bson.D) error {
	b, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", b)

	return err
}
