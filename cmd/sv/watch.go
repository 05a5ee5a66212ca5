package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/watch"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Report session files as the tools write them",
		Flags: []cli.Flag{
			toolFlag(allTools),
			outputFlag("Output format: terminal, json"),
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "How long to wait for writes to settle",
				Value: watch.DefaultDebounce,
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Exit after the first change",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			format := cmd.String("o")
			if format != "terminal" && format != "json" {
				return fmt.Errorf("unknown output format %q", format)
			}
			roots, err := a.roots(cmd.String("tool"))
			if err != nil {
				return err
			}

			w, err := watch.New(roots)
			if err != nil {
				return err
			}
			w.Debounce = cmd.Duration("debounce")
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := stdout(cmd)
			enc := json.NewEncoder(out)
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-w.Errors:
					log.Warn("watch error", "err", err)
				case ev := <-w.Events:
					if format == "json" {
						err = enc.Encode(ev)
					} else {
						_, err = fmt.Fprintf(out, "%s  %-8s  %s\n", time.Now().Format("15:04:05"), ev.Tool, strings.Join(ev.Paths, " "))
					}
					if err != nil {
						return err
					}
					if cmd.Bool("once") {
						return nil
					}
				}
			}
		},
	}
}

// roots maps the selected tools to their session directories.
func (a *app) roots(tag string) (map[core.Tool]string, error) {
	all := map[core.Tool]string{
		core.ToolClaude:   a.cfg.ClaudeDir,
		core.ToolCodex:    a.cfg.CodexDir,
		core.ToolOpenCode: a.cfg.OpenCodeDir,
	}
	if tag == allTools {
		return all, nil
	}
	tool, err := core.ParseTool(tag)
	if err != nil {
		return nil, err
	}
	return map[core.Tool]string{tool: all[tool]}, nil
}
