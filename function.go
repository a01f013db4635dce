// Package ravengen exposes sample generation as an HTTP cloud function.
package ravengen

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"go.uber.org/zap"

	"crosswarped.com/ravengen/pkg/distractor"
	"crosswarped.com/ravengen/pkg/generator"
	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/sink"
)

// maxSamplesPerRequest caps the work of a single request.
const maxSamplesPerRequest = 50

var logger = zap.NewNop()

func init() {
	if l, err := zap.NewProduction(); err == nil {
		logger = l
	}
	functions.HTTP("GenerateSamples", GenerateSamples)
}

// GenerateSamples answers with a JSON array of samples of one configuration.
//
// Query parameters: configuration (default center_single), seed, samples (default 1),
// strategy (independent or hierarchical) and mesh (true or false).
func GenerateSamples(w http.ResponseWriter, r *http.Request) {
	cfg, id, err := parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := generator.New(cfg, logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var out sink.Memory
	rng := generator.RandFor(cfg.Seed, 0)
	for k := range cfg.Samples {
		if err := r.Context().Err(); err != nil {
			http.Error(w, err.Error(), http.StatusRequestTimeout)
			return
		}
		s, err := g.Sample(rng, k, id)
		if err != nil {
			logger.Error("sample failed", zap.String("configuration", string(id)), zap.Int("index", k), zap.Error(err))
			status := http.StatusInternalServerError
			if errors.Is(err, generator.ErrRetriesExhausted) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), status)
			return
		}
		if err := out.Write(r.Context(), s.Record()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out.Records); err != nil {
		logger.Error("encode response", zap.Error(err))
	}
}

func parseRequest(r *http.Request) (generator.Config, layout.ID, error) {
	q := r.URL.Query()
	cfg := generator.DefaultConfig()
	cfg.Samples = 1

	id := layout.CenterSingle
	if v := q.Get("configuration"); v != "" {
		parsed, err := layout.ParseID(v)
		if err != nil {
			return cfg, "", err
		}
		id = parsed
	}
	cfg.Configurations = []layout.ID{id}

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, "", fmt.Errorf("seed %q: %w", v, err)
		}
		cfg.Seed = seed
	}
	if v := q.Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSamplesPerRequest {
			return cfg, "", fmt.Errorf("samples must be between 1 and %d", maxSamplesPerRequest)
		}
		cfg.Samples = n
	}
	if v := q.Get("strategy"); v != "" {
		strategy, err := distractor.ParseStrategy(v)
		if err != nil {
			return cfg, "", err
		}
		cfg.Strategy = strategy
	}
	if v := q.Get("mesh"); v != "" {
		mesh, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, "", fmt.Errorf("mesh %q: %w", v, err)
		}
		cfg.Mesh = mesh
	}
	return cfg, id, nil
}
