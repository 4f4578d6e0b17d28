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

package cursor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// Parts of Prometheus metric names.
const (
	namespace = "docmatch"
	subsystem = "cursors"
)

// currentDesc describes the current number of cursors.
var currentDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, subsystem, "current"),
	"The current number of cursors.",
	nil, nil,
)

// Registry stores cursors by ID.
//
//nolint:vet // for readability
type Registry struct {
	rw sync.RWMutex
	m  map[int64]*Cursor

	lastID atomic.Int64
	l      *zap.Logger

	created *prometheus.CounterVec
}

// NewRegistry creates a new Registry.
func NewRegistry(l *zap.Logger) *Registry {
	return &Registry{
		m: map[int64]*Cursor{},
		l: l,
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "created_total",
				Help:      "The total number of created cursors.",
			},
			[]string{"db", "collection"},
		),
	}
}

// Add stores the given cursor and assigns it a new positive ID.
// Closing the cursor removes it from the registry.
func (r *Registry) Add(c *Cursor, db, collection string) int64 {
	r.rw.Lock()
	defer r.rw.Unlock()

	// use sequential, positive, short cursor IDs to make debugging easier
	var id int64
	for id == 0 || r.m[id] != nil {
		id = r.lastID.Add(1)
	}

	r.l.Debug(
		"Creating",
		zap.Int64("id", id),
		zap.String("db", db),
		zap.String("collection", collection),
	)

	c.ID = id
	c.DB = db
	c.Collection = collection
	c.r = r
	r.m[id] = c

	r.created.WithLabelValues(db, collection).Inc()

	return id
}

// Get returns stored cursor by ID, or nil.
func (r *Registry) Get(id int64) *Cursor {
	r.rw.RLock()
	defer r.rw.RUnlock()

	return r.m[id]
}

// All returns all stored cursors.
func (r *Registry) All() []*Cursor {
	r.rw.RLock()
	defer r.rw.RUnlock()

	return maps.Values(r.m)
}

// Len returns the number of stored cursors.
func (r *Registry) Len() int {
	r.rw.RLock()
	defer r.rw.RUnlock()

	return len(r.m)
}

// Close closes all stored cursors.
func (r *Registry) Close() {
	for _, c := range r.All() {
		c.Close()
	}
}

// remove removes the cursor with the given ID.
//
// This method should be called only from cursor.Close().
func (r *Registry) remove(id int64) {
	r.rw.Lock()
	defer r.rw.Unlock()

	c := r.m[id]
	if c == nil {
		return
	}

	r.l.Debug(
		"Deleting",
		zap.Int("total", len(r.m)),
		zap.Int64("id", id),
		zap.Duration("age", time.Since(c.created)),
	)

	delete(r.m, id)
}

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	r.created.Describe(ch)
	ch <- currentDesc
}

// Collect implements prometheus.Collector.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.created.Collect(ch)

	current := r.Len()

	ch <- prometheus.MustNewConstMetric(
		currentDesc,
		prometheus.GaugeValue,
		float64(current),
	)
}

// check interfaces
var (
	_ prometheus.Collector = (*Registry)(nil)
)
