package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"crosswarped.com/ravengen/pkg/generator"
	"crosswarped.com/ravengen/pkg/layout"
)

// newPreviewCmd prints samples of one configuration one at a time.
func newPreviewCmd(a *app) *cobra.Command {
	var (
		configuration string
		firstOnly     bool
		doAll         bool
		count         int
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print samples of one configuration interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if firstOnly && doAll {
				return fmt.Errorf("cannot use both --first and --all")
			}
			id, err := layout.ParseID(configuration)
			if err != nil {
				return err
			}
			gc, err := a.cfg.Generator()
			if err != nil {
				return err
			}
			gc.Configurations = []layout.ID{id}
			g, err := generator.New(gc, a.logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())
			rng := generator.RandFor(gc.Seed, 0)
			for k := range count {
				if err := ctx.Err(); err != nil {
					return err
				}
				s, err := g.Sample(rng, k, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "--------------------------------")
				printSample(out, s)

				if firstOnly {
					break
				}
				if doAll {
					continue
				}
				// Continue (any key), show the full record (s) or stop (n).
				fmt.Fprint(out, "Continue? [Y/n/s]: ")
				var input string
				if in.Scan() {
					input = strings.TrimSpace(in.Text())
				}
				if input == "s" || input == "S" {
					js, err := json.MarshalIndent(s.Record(), "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(js))
				}
				if input == "n" || input == "N" {
					break
				}
			}
			fmt.Fprintln(out, "--------------------------------")
			fmt.Fprintln(out, "Done")
			return nil
		},
	}
	cmd.Flags().StringVar(&configuration, "configuration", string(layout.CenterSingle), "configuration to preview")
	cmd.Flags().BoolVar(&firstOnly, "first", false, "only print the first sample")
	cmd.Flags().BoolVar(&doAll, "all", false, "print every sample without prompting")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "maximum number of samples")
	return cmd
}

func printSample(out io.Writer, s *generator.Sample) {
	fmt.Fprintf(out, "%s #%d (%s) attempts=%d\n", s.Configuration, s.Index, s.Split, s.Attempts)
	for c, g := range s.Rules {
		fmt.Fprintf(out, "  rules %d:", c)
		for _, r := range g {
			fmt.Fprintf(out, " %s", r)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  answer: %s\n", s.Answer)
	for i, c := range s.Candidates {
		marker := " "
		if i == s.Target {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s%d %v\n", marker, i, c.Modifications)
	}
}
