package main

import (
	"context"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/reader"
	"github.com/urfave/cli/v3"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarize session, message and token usage",
		Flags: []cli.Flag{
			toolFlag(allTools),
			outputFlag("Output format: terminal, json"),
			&cli.BoolFlag{
				Name:  "tokens",
				Usage: "Split daily tokens into input and output where the tool allows it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			readers, err := a.readersFor(cmd.String("tool"))
			if err != nil {
				return err
			}
			rnd, err := a.renderer(cmd.String("o"))
			if err != nil {
				return err
			}

			w := stdout(cmd)
			for _, r := range readers {
				var s *core.Stats
				if cmd.Bool("tokens") {
					s, err = reader.TokenSummary(r)
				} else {
					s, err = r.Stats()
				}
				if err != nil {
					return err
				}
				if err := rnd.Stats(w, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
