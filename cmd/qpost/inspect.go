package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/quantforge/qpost/internal/qmodel"
	"github.com/quantforge/qpost/internal/simfile"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Summarize a traced simfile",
		Flags: commonGraphFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if graphPath == "" {
				return errors.New("inspect: --graph is required")
			}
			g, m, err := simfile.Load(graphPath)
			if err != nil {
				return err
			}

			fmt.Printf("model:   %s\n", g.ModelName)
			fmt.Printf("ops:     %d\n", len(g.Ops))
			fmt.Printf("modules: %d\n\n", len(m.Modules()))

			for _, op := range g.Ops {
				ins := make([]string, len(op.Inputs))
				for i, p := range op.Inputs {
					ins[i] = p.Name
				}
				outs := make([]string, len(op.Outputs))
				for i, p := range op.Outputs {
					outs[i] = p.Name
				}
				tag := ""
				if !op.HasModule {
					tag = " (virtual)"
				}
				fmt.Printf("%-14s %-24s %s -> %s%s\n",
					op.Kind, op.DottedName, strings.Join(ins, ","), strings.Join(outs, ","), tag)
			}

			fmt.Println()
			for _, qm := range m.Modules() {
				fmt.Printf("%-24s %-14s in=%s out=%s\n",
					qm.Name, qm.Kind, slotSummary(qm.InputQuantizers), slotSummary(qm.OutputQuantizers))
			}
			return nil
		},
	}
}

func slotSummary(qs []*qmodel.Quantizer) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		if q == nil {
			parts[i] = "-"
			continue
		}
		sym := "asym"
		if q.Symmetric {
			sym = "sym"
		}
		parts[i] = fmt.Sprintf("%db/%s", q.Bitwidth, sym)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
