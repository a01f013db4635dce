package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crosswarped.com/ravengen/internal/config"
	"crosswarped.com/ravengen/pkg/generator"
)

type generateFlags struct {
	seed     uint64
	samples  int
	out      string
	strategy string
	mesh     bool
	workers  int
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate samples for every configured layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("seed") {
				a.cfg.Seed = f.seed
			}
			if flags.Changed("samples") {
				a.cfg.Samples = f.samples
			}
			if flags.Changed("out") {
				a.cfg.Output.Kind, a.cfg.Output.Path = config.OutputJSONLines, f.out
			}
			if flags.Changed("strategy") {
				a.cfg.Strategy = f.strategy
			}
			if flags.Changed("mesh") {
				a.cfg.Mesh = f.mesh
			}
			if flags.Changed("workers") {
				a.cfg.Workers = f.workers
			}
			return a.generate(cmd)
		},
	}
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed")
	cmd.Flags().IntVarP(&f.samples, "samples", "n", 0, "samples per configuration")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write JSON lines to this file")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "distractor strategy: independent or hierarchical")
	cmd.Flags().BoolVar(&f.mesh, "mesh", false, "add a mesh component to every panel")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "configurations generated concurrently")
	return cmd
}

func (a *app) generate(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	gc, err := a.cfg.Generator()
	if err != nil {
		return err
	}
	g, err := generator.New(gc, a.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	out, err := a.cfg.Output.Open(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("generating",
		zap.Uint64("seed", gc.Seed),
		zap.Int("samples", gc.Samples),
		zap.Int("configurations", len(gc.Configurations)),
		zap.String("output", a.cfg.Output.Kind))
	runErr := g.Run(ctx, out)
	if err := out.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
