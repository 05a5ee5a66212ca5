package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jiaweimsg/session-viewer/reader"
	"github.com/urfave/cli/v3"
)

func searchCmd() *cli.Command {
	flags := []cli.Flag{
		toolFlag(allTools),
		outputFlag("Output format: terminal, json"),
		&cli.IntFlag{
			Name:    "max",
			Aliases: []string{"n"},
			Usage:   "Maximum number of results (default from config)",
		},
	}

	return &cli.Command{
		Name:      "search",
		Usage:     "Find messages containing a phrase, ignoring case",
		ArgsUsage: "<query>",
		Flags:     append(flags, redactFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("a search query is required")
			}

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

			limit := int(cmd.Int("max"))
			if limit <= 0 {
				limit = a.cfg.MaxResults
			}
			results, err := reader.SearchAll(readers, query, limit)
			if err != nil {
				return err
			}

			redactor, err := newRedactor(cmd)
			if err != nil {
				return err
			}
			if redactor != nil {
				redactor.Results(results, query)
			}
			return rnd.SearchResults(stdout(cmd), results)
		},
	}
}
