package postprocessors

import (
	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/postprocessors/chunker"
)

// RegisterDefaults installs the built-in processors. Call once during
// startup before building pipelines.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker assembles a chunker from its config keys:
//
//	mode            "flat" or "semantic" (default "semantic")
//	chunk_size      characters per flat chunk (default 1000)
//	overlap         characters shared between flat chunks (default 200)
//	min_chunk_size  smallest semantic chunk (default 100)
//	max_chunk_size  largest semantic chunk (default 2000)
//	separator       flat-mode split boundary (default " ")
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if mode := configString(cfg, "mode"); mode != "" {
			opts = append(opts, chunker.WithMode(domain.ChunkMode(mode)))
		}
		if size := configInt(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if overlap := configInt(cfg, "overlap"); overlap >= 0 {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
		if size := configInt(cfg, "min_chunk_size"); size > 0 {
			opts = append(opts, chunker.WithMinChunkSize(size))
		}
		if size := configInt(cfg, "max_chunk_size"); size > 0 {
			opts = append(opts, chunker.WithMaxChunkSize(size))
		}
		if sep := configString(cfg, "separator"); sep != "" {
			opts = append(opts, chunker.WithSeparator(sep))
		}
	}

	return chunker.New(opts...), nil
}

// configInt reads an int-ish value. TOML parses integers as int64 and
// JSON as float64, so all three shapes are accepted.
func configInt(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func configString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}
