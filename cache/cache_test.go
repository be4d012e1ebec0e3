// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/mir/builder"
	"github.com/gogpu/mir/graph"
	"github.com/gogpu/mir/ir"
)

func color(name string, r, g, b float32) *graph.Material {
	return &graph.Material{
		Name:   name,
		Config: ir.MaterialConfig{Domain: ir.DomainSurface},
		Nodes: []graph.Expression{
			&graph.Constant{Base: graph.Base{NodeName: "Color"}, Value: []float32{r, g, b}},
		},
		Outputs: map[ir.Property]graph.Link{ir.PropertyBaseColor: {Node: "Color"}},
	}
}

func broken(name string) *graph.Material {
	m := color(name, 1, 0, 0)
	m.Nodes = append(m.Nodes, graph.NewOperator("Sin", ir.OpSin))
	m.Outputs[ir.PropertyRoughness] = graph.Link{Node: "Sin"}
	return m
}

func TestFingerprint(t *testing.T) {
	opts := builder.DefaultOptions()
	red := Fingerprint(color("M", 1, 0, 0), opts)

	tests := []struct {
		name string
		key  Key
		same bool
	}{
		{"identical", Fingerprint(color("M", 1, 0, 0), opts), true},
		{"other value", Fingerprint(color("M", 0, 1, 0), opts), false},
		{"other name", Fingerprint(color("N", 1, 0, 0), opts), false},
		{"logger ignored", Fingerprint(color("M", 1, 0, 0), builder.Options{HLSL: opts.HLSL}), true},
		{"ternary branches", func() Key {
			o := opts
			o.HLSL.TernaryBranches = true
			return Fingerprint(color("M", 1, 0, 0), o)
		}(), false},
		{"switch override", func() Key {
			o := opts
			o.StaticSwitches = map[string]bool{"UseDetail": false}
			return Fingerprint(color("M", 1, 0, 0), o)
		}(), false},
	}
	for _, tt := range tests {
		if got := tt.key == red; got != tt.same {
			t.Errorf("%s: same key = %v, want %v", tt.name, got, tt.same)
		}
	}
}

func TestFingerprintLoadedMaterial(t *testing.T) {
	a, err := graph.Load("../graph/testdata/rock.yaml")
	require.NoError(t, err)
	b, err := graph.Load("../graph/testdata/rock.yaml")
	require.NoError(t, err)

	opts := builder.DefaultOptions()
	require.Equal(t, Fingerprint(a, opts), Fingerprint(b, opts))
	require.Len(t, Fingerprint(a, opts).String(), 2*KeySize)

	b.StaticSwitches["UseDetail"] = false
	require.NotEqual(t, Fingerprint(a, opts), Fingerprint(b, opts))
}

func TestBuildHit(t *testing.T) {
	c, err := New(8, builder.DefaultOptions())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := c.Build(ctx, color("M", 1, 0, 0))
	require.NoError(t, err)
	second, err := c.Build(ctx, color("M", 1, 0, 0))
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, Stats{Hits: 1, Builds: 1}, c.Stats())
	require.Equal(t, 1, c.Len())

	require.True(t, c.Forget(color("M", 1, 0, 0)))
	require.Zero(t, c.Len())

	_, err = c.Build(ctx, color("A", 1, 0, 0))
	require.NoError(t, err)
	_, err = c.Build(ctx, color("B", 0, 1, 0))
	require.NoError(t, err)
	c.Purge()
	require.Zero(t, c.Len())
	require.Equal(t, Stats{Hits: 1, Builds: 3}, c.Stats())
}

func TestBuildErrorNotCached(t *testing.T) {
	c, err := New(8, builder.DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = c.Build(context.Background(), broken("M_Broken"))
		_, ok := builder.Diagnostics(err)
		require.True(t, ok)
	}
	require.Zero(t, c.Len())
	require.Equal(t, int64(2), c.Stats().Builds)
}

func TestEviction(t *testing.T) {
	c, err := New(1, builder.DefaultOptions())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Build(ctx, color("A", 1, 0, 0))
	require.NoError(t, err)
	_, err = c.Build(ctx, color("B", 0, 1, 0))
	require.NoError(t, err)
	_, err = c.Build(ctx, color("A", 1, 0, 0))
	require.NoError(t, err)

	require.Equal(t, Stats{Hits: 0, Builds: 3}, c.Stats())
	require.Equal(t, 1, c.Len())
}

func TestConcurrentBuildOnce(t *testing.T) {
	c, err := New(8, builder.DefaultOptions())
	require.NoError(t, err)

	const n = 16
	results := make([]*builder.Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := c.Build(context.Background(), color("M", 1, 0, 0))
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = r
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), c.Stats().Builds)
	for i := 1; i < n; i++ {
		require.Same(t, results[0], results[i])
	}
}

func TestBuildAll(t *testing.T) {
	c, err := New(8, builder.DefaultOptions())
	require.NoError(t, err)

	materials := []*graph.Material{
		color("A", 1, 0, 0),
		broken("B"),
		color("C", 0, 0, 1),
	}
	results, err := c.BuildAll(context.Background(), materials, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "material B: 1 error")
	require.Len(t, results, 3)

	for i, r := range results {
		require.Same(t, materials[i], r.Material)
	}
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)
	require.Error(t, results[1].Err)
	require.Nil(t, results[1].Result)
	require.NoError(t, results[2].Err)
}

func TestBuildAllCanceled(t *testing.T) {
	c, err := New(8, builder.DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.BuildAll(ctx, []*graph.Material{color("A", 1, 0, 0)}, 0)
	require.ErrorIs(t, err, context.Canceled)
}

type backend struct {
	mu        sync.Mutex
	submitted []string
	fail      string
}

func (b *backend) Submit(_ context.Context, r *builder.Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.Module.Name == b.fail {
		return errors.New("pipeline rejected")
	}
	b.submitted = append(b.submitted, r.Module.Name)
	return nil
}

func TestCompileAll(t *testing.T) {
	c, err := New(8, builder.DefaultOptions())
	require.NoError(t, err)

	be := &backend{fail: "C"}
	results, err := c.CompileAll(context.Background(), []*graph.Material{
		color("A", 1, 0, 0),
		broken("B"),
		color("C", 0, 0, 1),
	}, 0, be)
	require.Error(t, err)
	require.Equal(t, []string{"A"}, be.submitted)
	require.ErrorContains(t, results[2].Err, "material C: submit: pipeline rejected")
}
