package main

import (
	"context"
	"fmt"

	"github.com/Jiaweimsg/session-viewer/compact"
	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/urfave/cli/v3"
)

func messagesCmd() *cli.Command {
	flags := []cli.Flag{
		toolFlag("claude"),
		outputFlag("Output format: terminal, json, html"),
		&cli.StringFlag{
			Name:    "project",
			Aliases: []string{"p"},
			Usage:   "Project key (required for claude)",
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number, starting at 1",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Messages per page (default from config)",
		},
		&cli.StringFlag{
			Name:  "compact",
			Usage: "Enable compact mode. Use --compact=no-thinking to also strip thinking blocks",
		},
	}

	return &cli.Command{
		Name:      "messages",
		Usage:     "Show one page of a session's messages",
		ArgsUsage: "<session>",
		Flags:     append(flags, redactFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().First()
			if key == "" {
				return fmt.Errorf("a session id or path is required")
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			r, err := a.reader(cmd.String("tool"))
			if err != nil {
				return err
			}

			size := int(cmd.Int("page-size"))
			if size <= 0 {
				size = a.cfg.PageSize
			}
			page, err := r.Messages(key, cmd.String("project"), int(cmd.Int("page"))-1, size)
			if err != nil {
				return err
			}

			var transformers []core.Transformer
			redactor, err := newRedactor(cmd)
			if err != nil {
				return err
			}
			if redactor != nil {
				transformers = append(transformers, redactor)
			}
			if v := cmd.String("compact"); v != "" {
				transformers = append(transformers, compact.New(compact.Config{StripThinking: v == "no-thinking"}))
			}
			if err := core.Chain(page, transformers...); err != nil {
				return fmt.Errorf("transform: %w", err)
			}

			title := fmt.Sprintf("%s session %s", r.Tool(), key)
			rnd, err := a.messageRenderer(cmd.String("o"), title)
			if err != nil {
				return err
			}
			return rnd.Messages(stdout(cmd), page)
		},
	}
}
