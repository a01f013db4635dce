package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/panel"
	"crosswarped.com/ravengen/pkg/sink"
)

// RandFor returns the random source of one configuration. Each configuration owns its
// source, so its samples do not depend on how workers interleave.
func RandFor(seed uint64, configuration int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(configuration)))
}

// Run generates Samples samples for every configuration and writes them to out. Workers
// generate concurrently; a single writer serialises access to out. The first error
// cancels the run.
func (g *Generator) Run(ctx context.Context, out sink.Sink) error {
	start := time.Now()
	group, ctx := errgroup.WithContext(ctx)
	records := make(chan sink.Record)

	workers, workerCtx := errgroup.WithContext(ctx)
	if g.cfg.Workers > 0 {
		workers.SetLimit(g.cfg.Workers)
	}
	group.Go(func() error {
		defer close(records)
		for i, id := range g.cfg.Configurations {
			workers.Go(func() error {
				return g.runConfiguration(workerCtx, i, id, records)
			})
		}
		return workers.Wait()
	})

	var written int
	group.Go(func() error {
		for r := range records {
			if err := out.Write(ctx, r); err != nil {
				return fmt.Errorf("write sample %s: %w", r.ID, err)
			}
			written++
		}
		return nil
	})

	err := group.Wait()
	g.logger.Info("generation finished",
		zap.Int("samples", written),
		zap.Int("configurations", len(g.cfg.Configurations)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return err
}

func (g *Generator) runConfiguration(ctx context.Context, i int, id layout.ID, records chan<- sink.Record) error {
	rng := RandFor(g.cfg.Seed, i)
	for k := range g.cfg.Samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := g.Sample(rng, k, id)
		if err != nil {
			g.logger.Error("sample failed", zap.String("configuration", string(id)), zap.Int("index", k), zap.Error(err))
			return err
		}
		select {
		case records <- s.Record():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.logger.Info("configuration done", zap.String("configuration", string(id)), zap.Int("samples", g.cfg.Samples))
	return nil
}

// Record flattens the sample for storage.
func (s *Sample) Record() sink.Record {
	r := sink.Record{
		ID:            s.ID.String(),
		Configuration: string(s.Configuration),
		Index:         s.Index,
		Split:         string(s.Split),
		Mesh:          s.Mesh,
		Target:        s.Target,
		Attempts:      s.Attempts,
		CreatedAt:     time.Now().UTC(),
	}
	for _, group := range s.Rules {
		for _, rule := range group {
			r.Rules = append(r.Rules, sink.Rule{
				Component: rule.Component(),
				Name:      string(rule.Name()),
				Attr:      rule.Attr().String(),
				Value:     rule.Value(),
			})
		}
	}
	for _, p := range s.Context {
		var rec sink.Panel
		for _, c := range p.Components {
			rec.Components = append(rec.Components, componentRecord(c))
		}
		r.Context = append(r.Context, rec)
	}
	for _, c := range s.Answer.Components {
		r.Answer = append(r.Answer, componentRecord(c))
	}
	for _, c := range s.Candidates {
		var mods []sink.Modification
		for _, m := range c.Modifications {
			rec := sink.Modification{Component: m.Component, Attr: m.Attr.String(), Value: m.Value}
			if !m.Slots.Empty() {
				rec.Slots = m.Slots.Slice()
			}
			mods = append(mods, rec)
		}
		r.Candidates = append(r.Candidates, sink.Candidate{Modifications: mods})
	}
	return r
}

func componentRecord(c panel.Component) sink.Component {
	out := sink.Component{Name: c.Name, Uniformity: c.Uniformity}
	for _, e := range c.Entities {
		out.Entities = append(out.Entities, sink.Entity(e))
	}
	return out
}
