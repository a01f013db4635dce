// Package generator assembles complete samples: a rule assignment, the matrix of
// panels that follows it and the candidate list with its distractors.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crosswarped.com/ravengen/pkg/constraint"
	"crosswarped.com/ravengen/pkg/distractor"
	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/panel"
	"crosswarped.com/ravengen/pkg/rules"
)

var (
	// ErrInvalidConfig reports generator settings that cannot produce samples.
	ErrInvalidConfig = errors.New("generator: invalid config")
	// ErrRetriesExhausted is returned when no sampled rule assignment was satisfiable.
	ErrRetriesExhausted = errors.New("generator: retries exhausted")
)

// Config controls sample generation.
type Config struct {
	Seed uint64
	// Samples is the number of samples per configuration.
	Samples int
	// Val and Test are the shares, out of ten, of the validation and test splits.
	Val, Test int
	// HeldOut switches rule sampling to out-of-distribution mode.
	HeldOut        []rules.HeldOut
	Mesh           bool
	Configurations []layout.ID
	// MaxAttempts bounds how many rule assignments are tried per sample.
	MaxAttempts int
	Strategy    distractor.Strategy
	// Workers bounds concurrent configurations; zero means one per configuration.
	Workers int
}

// DefaultConfig generates every configuration in-distribution.
func DefaultConfig() Config {
	return Config{
		Seed:           1,
		Samples:        10,
		Val:            2,
		Test:           2,
		Configurations: layout.IDs(),
		MaxAttempts:    10000,
		Strategy:       distractor.Hierarchical,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Samples < 0 {
		return fmt.Errorf("negative sample count %d: %w", c.Samples, ErrInvalidConfig)
	}
	if c.Val < 0 || c.Test < 0 || c.Val+c.Test > 10 {
		return fmt.Errorf("split shares val=%d test=%d: %w", c.Val, c.Test, ErrInvalidConfig)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts %d: %w", c.MaxAttempts, ErrInvalidConfig)
	}
	if len(c.Configurations) == 0 {
		return fmt.Errorf("no configurations: %w", ErrInvalidConfig)
	}
	for _, id := range c.Configurations {
		if _, err := layout.Lookup(id); err != nil {
			return err
		}
	}
	if _, err := distractor.ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	return nil
}

// SplitFor assigns the k-th sample of a configuration to a split: out of every ten
// consecutive samples the first 10-val-test are train, the next val are validation.
func SplitFor(k, val, test int) rules.Split {
	switch n := k % 10; {
	case n < 10-val-test:
		return rules.Train
	case n < 10-test:
		return rules.Val
	}
	return rules.Test
}

// Sample is a generated sample.
type Sample struct {
	ID            uuid.UUID
	Configuration layout.ID
	Index         int
	Split         rules.Split
	Mesh          bool
	Rules         []rules.Group
	// Context holds the eight panels shown with the question, row by row.
	Context []*panel.Panel
	Answer  *panel.Panel
	// Candidates holds the answer and its distractors in presentation order.
	Candidates []*panel.Panel
	Target     int
	Attempts   int
}

// Generator produces samples.
type Generator struct {
	cfg     Config
	catalog rules.Catalog
	logger  *zap.Logger
}

// New validates cfg and returns a generator.
func New(cfg Config, logger *zap.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, catalog: rules.DefaultCatalog(), logger: logger}, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config { return g.cfg }

// Sample generates the index-th sample of a configuration from rng.
func (g *Generator) Sample(rng *rand.Rand, index int, id layout.ID) (*Sample, error) {
	cfg, err := layout.Lookup(id)
	if err != nil {
		return nil, err
	}
	if g.cfg.Mesh {
		cfg = cfg.WithMesh()
	}
	sampleID, err := uuid.NewRandomFromReader(readerOf(rng))
	if err != nil {
		return nil, fmt.Errorf("sample id: %w", err)
	}
	s := &Sample{
		ID:            sampleID,
		Configuration: id,
		Index:         index,
		Split:         SplitFor(index, g.cfg.Val, g.cfg.Test),
		Mesh:          cfg.HasMesh(),
	}
	log := g.logger.With(zap.String("configuration", string(id)), zap.Int("index", index), zap.String("split", string(s.Split)))

	sampler, err := rules.NewSampler(g.catalog, rng)
	if err != nil {
		return nil, err
	}
	req := rules.Request{
		Components:    cfg.NumComponents(),
		MeshPresent:   cfg.HasMesh(),
		Configuration: id,
		HeldOut:       g.cfg.HeldOut,
		Split:         s.Split,
	}
	var tightened []panel.Constraints
	for s.Attempts < g.cfg.MaxAttempts && tightened == nil {
		s.Attempts++
		if s.Rules, err = sampler.Sample(req); err != nil {
			return nil, err
		}
		if tightened, err = tighten(cfg, s.Rules, log); err != nil {
			return nil, err
		}
	}
	if tightened == nil {
		return nil, fmt.Errorf("%s sample %d after %d attempts: %w", id, index, s.Attempts, ErrRetriesExhausted)
	}

	matrix, err := panel.SampleMatrix(rng, cfg, tightened, s.Rules)
	if err != nil {
		return nil, fmt.Errorf("%s sample %d: %w", id, index, err)
	}
	s.Context, s.Answer = matrix.Context(), matrix.Answer()
	pools, err := distractor.AvailableAttributes(s.Rules, s.Answer)
	if err != nil {
		return nil, err
	}
	meshComponent := -1
	if cfg.HasMesh() {
		meshComponent = cfg.NumComponents() - 1
	}
	plan, err := distractor.BuildCandidates(g.cfg.Strategy, pools, rng, meshComponent)
	if err != nil {
		return nil, fmt.Errorf("%s sample %d: %w", id, index, err)
	}
	distractors, err := realise(rng, s.Answer, plan)
	if err != nil {
		return nil, fmt.Errorf("%s sample %d: %w", id, index, err)
	}

	s.Candidates = append([]*panel.Panel{s.Answer}, distractors...)
	rng.Shuffle(len(s.Candidates), func(i, j int) {
		s.Candidates[i], s.Candidates[j] = s.Candidates[j], s.Candidates[i]
	})
	for i, c := range s.Candidates {
		if c == s.Answer {
			s.Target = i
		}
	}
	log.Debug("sample generated", zap.Int("attempts", s.Attempts), zap.Int("candidates", len(s.Candidates)), zap.Int("target", s.Target))
	return s, nil
}

// tighten returns nil constraints when any component of the assignment is unsatisfiable.
func tighten(cfg layout.Configuration, groups []rules.Group, log *zap.Logger) ([]panel.Constraints, error) {
	out := make([]panel.Constraints, len(groups))
	for i, group := range groups {
		c, err := cfg.Component(i)
		if err != nil {
			return nil, err
		}
		l, e, err := constraint.TightenFrom(group,
			constraint.DeriveLayout(c.Kind, c.Slots, c.Number, c.Uniformity),
			constraint.DeriveEntity(c.Type, c.Size, c.Color, c.Angle))
		if err != nil {
			return nil, err
		}
		if !l.Satisfiable() || !e.Satisfiable() {
			log.Debug("rule assignment rejected",
				zap.Int("component", i),
				zap.Stringers("rules", []rules.Rule(group)),
				zap.Stringers("unsatisfied", constraint.Unsatisfied(l, e)))
			return nil, nil
		}
		out[i] = panel.Constraints{Layout: l, Entity: e}
	}
	return out, nil
}

type variantKey struct {
	pool    distractor.PoolID
	variant int
}

// realise turns a plan into panels. Choices naming the same pool and variant share
// one alternative value; distinct variants of a pool never repeat a value.
func realise(rng *rand.Rand, answer *panel.Panel, plan distractor.Plan) ([]*panel.Panel, error) {
	values := map[variantKey]panel.Modification{}
	var used []panel.Modification
	out := make([]*panel.Panel, 0, len(plan))
	for _, candidate := range plan {
		p := answer
		for _, choice := range candidate {
			key := variantKey{choice.Draw.Pool, choice.Variant}
			m, ok := values[key]
			if !ok {
				var err error
				if m, err = answer.SampleAlternative(rng, choice.Draw, used); err != nil {
					return nil, err
				}
				values[key] = m
				used = append(used, m)
			}
			next, err := p.Apply(m)
			if err != nil {
				return nil, err
			}
			p = next
		}
		out = append(out, p)
	}
	return out, nil
}

// rngReader adapts rng to an io.Reader so that sample IDs follow the seed.
type rngReader struct{ rng *rand.Rand }

func readerOf(rng *rand.Rand) rngReader { return rngReader{rng} }

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}
