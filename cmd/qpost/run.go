package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/passes"
	"github.com/quantforge/qpost/internal/simfile"
)

func runCmd() *cli.Command {
	var (
		outPath     string
		matmul8Bit  bool
		clipWeights bool
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run post-processing passes against a traced simfile",
		Flags: append(append(commonGraphFlags(), commonLogFlags()...),
			&cli.StringSliceFlag{
				Name:    "propagate",
				Aliases: []string{"p"},
				Usage:   "propagate output encodings of modules of this op kind (repeatable)",
			},
			&cli.BoolFlag{
				Name:        "matmul-8bit",
				Usage:       "apply the matmul second-operand 8-bit symmetric exception",
				Destination: &matmul8Bit,
			},
			&cli.BoolFlag{
				Name:        "clip-weights",
				Usage:       "clip 16-bit symmetric weights to the 0x7f7f max quantized value",
				Destination: &clipWeights,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write the encodings report to this file (default stdout)",
				Destination: &outPath,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyLogConfig(cmd, LoadConfig())
			log := buildLogger()

			if graphPath == "" {
				return errors.New("run: --graph is required")
			}
			g, m, err := simfile.Load(graphPath)
			if err != nil {
				return fmt.Errorf("load %s: %w", graphPath, err)
			}
			log.Info("simfile loaded", "model", g.ModelName, "ops", len(g.Ops), "modules", len(m.Modules()))

			for _, kindName := range cmd.StringSlice("propagate") {
				kind, err := graph.ParseKind(kindName)
				if err != nil {
					return fmt.Errorf("propagate: %w", err)
				}
				if err := passes.Propagate(g, m, passes.ByKind(kind)); err != nil {
					return fmt.Errorf("propagate %s: %w", kindName, err)
				}
				log.Info("output encodings propagated", "kind", kindName)
			}
			if matmul8Bit {
				passes.ApplyMatMulSecondInputRule(g, m, log)
				log.Info("matmul second-operand exception applied")
			}
			if clipWeights {
				passes.ClipWeights16BitSymmetric(m, log)
				log.Info("16-bit symmetric weights clipped")
			}

			if outPath == "" {
				return simfile.WriteEncodings(os.Stdout, m)
			}
			if err := simfile.SaveEncodings(outPath, m); err != nil {
				return err
			}
			log.Info("encodings written", "path", outPath)
			return nil
		},
	}
}
