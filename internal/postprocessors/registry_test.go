package postprocessors

import (
	"context"
	"slices"
	"testing"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// stubProcessor carries just a name; Process passes chunks through.
type stubProcessor struct {
	name string
}

func (p *stubProcessor) Name() string { return p.name }
func (p *stubProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func stubBuilder(name string) BuilderFunc {
	return func(map[string]any) (driven.PostProcessor, error) {
		return &stubProcessor{name: name}, nil
	}
}

func TestRegistry_RegisterAndHas(t *testing.T) {
	r := NewRegistry()

	if r.Has("chunker") {
		t.Error("fresh registry should be empty")
	}

	r.Register("chunker", stubBuilder("chunker"))

	if !r.Has("chunker") {
		t.Error("registered name not found")
	}
}

func TestRegistry_Build(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &stubProcessor{name: name}, nil
	})

	proc, err := r.Build("echo", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := proc.Name(); got != "custom" {
		t.Errorf("Name() = %q, want custom (config must reach the builder)", got)
	}

	if _, err := r.Build("missing", nil); err == nil {
		t.Error("Build with unregistered name should fail")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()

	if n := r.Names(); len(n) != 0 {
		t.Errorf("fresh registry Names() = %v", n)
	}

	r.Register("beta", stubBuilder("beta"))
	r.Register("alpha", stubBuilder("alpha"))

	want := []string{"alpha", "beta"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	if !r.Has("chunker") {
		t.Error("chunker should be available out of the box")
	}
}

func TestBuildChunker(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cases := []struct {
		name string
		cfg  map[string]any
	}{
		{"nil config", nil},
		{"flat mode", map[string]any{"mode": "flat", "chunk_size": 500, "overlap": 100}},
		{"semantic bounds", map[string]any{"mode": "semantic", "min_chunk_size": 50, "max_chunk_size": 800}},
		{"custom separator", map[string]any{"mode": "flat", "separator": "\n"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc, err := r.Build("chunker", tc.cfg)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if proc.Name() != "chunker" {
				t.Errorf("Name() = %q", proc.Name())
			}
		})
	}
}

func TestConfigInt(t *testing.T) {
	cases := []struct {
		name string
		cfg  map[string]any
		want int
	}{
		{"int", map[string]any{"size": 100}, 100},
		{"int64 from TOML", map[string]any{"size": int64(200)}, 200},
		{"float64 from JSON", map[string]any{"size": float64(300)}, 300},
		{"string is not a number", map[string]any{"size": "400"}, 0},
		{"absent key", map[string]any{"other": 100}, 0},
		{"nil map", nil, 0},
	}

	for _, tc := range cases {
		if got := configInt(tc.cfg, "size"); got != tc.want {
			t.Errorf("%s: configInt = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestConfigString(t *testing.T) {
	cases := []struct {
		name string
		cfg  map[string]any
		want string
	}{
		{"string", map[string]any{"mode": "flat"}, "flat"},
		{"non-string", map[string]any{"mode": 7}, ""},
		{"absent key", map[string]any{"other": "x"}, ""},
		{"nil map", nil, ""},
	}

	for _, tc := range cases {
		if got := configString(tc.cfg, "mode"); got != tc.want {
			t.Errorf("%s: configString = %q, want %q", tc.name, got, tc.want)
		}
	}
}
