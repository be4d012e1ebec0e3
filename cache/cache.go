// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package cache memoizes material builds by content fingerprint.
//
// Two materials with the same nodes, outputs, configuration and build
// options share a fingerprint, so a material reloaded from disk without
// changes is not rebuilt:
//
//	c, err := cache.New(256, builder.DefaultOptions())
//	...
//	r, err := c.Build(ctx, m)
//
// Results are shared between callers and must not be modified.
package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"lukechampine.com/blake3"

	"github.com/gogpu/mir/builder"
	"github.com/gogpu/mir/graph"
)

// KeySize is the size of a fingerprint in bytes.
const KeySize = 32

// Key is the fingerprint of a material and the options it is built with.
type Key [KeySize]byte

// String returns the key in hex.
func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Fingerprint hashes everything that affects the build of m with opts.
// The logger does not.
func Fingerprint(m *graph.Material, opts builder.Options) Key {
	h := blake3.New(KeySize, nil)
	writeMaterial(h, m)
	fmt.Fprintf(h, "hlsl %+v\n", opts.HLSL)
	if opts.ExternalCode != nil {
		fmt.Fprintf(h, "externalcode %p %s\n", opts.ExternalCode, opts.ExternalCode.Version)
	}
	writeSwitches(h, "override", opts.StaticSwitches)

	var k Key
	h.Sum(k[:0])
	return k
}

func writeMaterial(w io.Writer, m *graph.Material) {
	fmt.Fprintf(w, "material %q\n", m.Name)
	fmt.Fprintf(w, "config %+v\n", m.Config)
	writeSwitches(w, "switch", m.StaticSwitches)
	for _, n := range m.Nodes {
		// Nodes hold only values and types with a String method, so
		// their %+v form is stable.
		fmt.Fprintf(w, "node %s %+v\n", n.Kind(), n)
	}
	for _, p := range m.Properties() {
		fmt.Fprintf(w, "output %s %s\n", p, m.Outputs[p])
	}
}

func writeSwitches(w io.Writer, tag string, switches map[string]bool) {
	names := make([]string, 0, len(switches))
	for name := range switches {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s %q %t\n", tag, name, switches[name])
	}
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Builds int64
}

// Cache is a fixed-size LRU of build results. It is safe for concurrent
// use; concurrent builds of the same material are performed once.
type Cache struct {
	opts    builder.Options
	results *lru.Cache[Key, *builder.Result]
	flight  singleflight.Group
	log     *zap.Logger

	hits   atomic.Int64
	builds atomic.Int64
}

// New returns a cache holding up to size results built with opts.
func New(size int, opts builder.Options) (*Cache, error) {
	results, err := lru.New[Key, *builder.Result](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{opts: opts, results: results, log: log}, nil
}

// Build returns the cached result for m, building it on a miss. Failed
// builds are not cached.
func (c *Cache) Build(ctx context.Context, m *graph.Material) (*builder.Result, error) {
	key := Fingerprint(m, c.opts)
	if r, ok := c.results.Get(key); ok {
		c.hits.Add(1)
		c.log.Debug("cache hit", zap.String("material", m.Name), zap.Stringer("key", key))
		return r, nil
	}

	v, err, _ := c.flight.Do(key.String(), func() (any, error) {
		// A flight for the same key may have finished since the lookup.
		if r, ok := c.results.Get(key); ok {
			c.hits.Add(1)
			return r, nil
		}
		c.builds.Add(1)
		r, err := builder.Build(ctx, m, c.opts)
		if err != nil {
			return nil, err
		}
		c.results.Add(key, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*builder.Result), nil
}

// Result is the outcome of one material of a batch.
type Result struct {
	Material *graph.Material
	*builder.Result
	Err error
}

// BuildAll builds materials concurrently, at most limit at a time (no
// limit if limit <= 0). A failed material does not stop the others; the
// returned error joins every failure. Results are in input order.
func (c *Cache) BuildAll(ctx context.Context, materials []*graph.Material, limit int) ([]Result, error) {
	results := make([]Result, len(materials))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, m := range materials {
		i, m := i, m
		results[i].Material = m
		g.Go(func() error {
			r, err := c.Build(ctx, m)
			results[i].Result, results[i].Err = r, err
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	errs := make([]error, 0, len(results))
	for _, r := range results {
		errs = append(errs, r.Err)
	}
	return results, errors.Join(errs...)
}

// CompileAll builds materials like BuildAll and submits every successful
// build to backend.
func (c *Cache) CompileAll(ctx context.Context, materials []*graph.Material, limit int, backend builder.Backend) ([]Result, error) {
	results, err := c.BuildAll(ctx, materials, limit)
	if ctx.Err() != nil {
		return results, err
	}
	errs := []error{err}
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if serr := backend.Submit(ctx, r.Result); serr != nil {
			r.Err = fmt.Errorf("material %s: submit: %w", r.Material.Name, serr)
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Stats returns the lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Builds: c.builds.Load()}
}

// Len returns the number of cached results.
func (c *Cache) Len() int { return c.results.Len() }

// Purge drops every cached result.
func (c *Cache) Purge() { c.results.Purge() }

// Forget drops the result cached for m, if any.
func (c *Cache) Forget(m *graph.Material) bool {
	return c.results.Remove(Fingerprint(m, c.opts))
}
