package main

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/rules"
)

func newRulesCmd(a *app) *cobra.Command {
	var (
		configuration string
		split         string
		count         int
		seed          uint64
		catalog       bool
	)
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the rule catalog or sample rule assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if catalog {
				printCatalog(cmd, rules.DefaultCatalog())
				return nil
			}
			id, err := layout.ParseID(configuration)
			if err != nil {
				return err
			}
			sp, err := rules.ParseSplit(split)
			if err != nil {
				return err
			}
			cfg, err := layout.Lookup(id)
			if err != nil {
				return err
			}
			if a.cfg.Mesh {
				cfg = cfg.WithMesh()
			}
			gc, err := a.cfg.Generator()
			if err != nil {
				return err
			}
			sampler, err := rules.NewSampler(rules.DefaultCatalog(), rand.New(rand.NewPCG(seed, seed)))
			if err != nil {
				return err
			}
			for i := range count {
				groups, err := sampler.Sample(rules.Request{
					Components:    cfg.NumComponents(),
					MeshPresent:   cfg.HasMesh(),
					Configuration: id,
					HeldOut:       gc.HeldOut,
					Split:         sp,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "#%d %s\n", i, cfg)
				for c, g := range groups {
					names := make([]string, len(g))
					for j, r := range g {
						names[j] = r.String()
					}
					fmt.Fprintf(out, "  component %d: %s\n", c, strings.Join(names, " "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configuration, "configuration", string(layout.CenterSingle), "configuration to sample for")
	cmd.Flags().StringVar(&split, "split", string(rules.Train), "dataset split: train, val or test")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of assignments")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&catalog, "catalog", false, "print the rule catalog instead")
	return cmd
}

func printCatalog(cmd *cobra.Command, c rules.Catalog) {
	out := cmd.OutOrStdout()
	for class, entries := range c {
		fmt.Fprintf(out, "%s:\n", rules.Class(class))
		for _, e := range entries {
			if len(e.Values) == 0 {
				fmt.Fprintf(out, "  %s(%s)\n", e.Name, e.Attr)
				continue
			}
			fmt.Fprintf(out, "  %s(%s) %v\n", e.Name, e.Attr, e.Values)
		}
	}
}
