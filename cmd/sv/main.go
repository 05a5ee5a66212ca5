package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newRoot().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRoot() *cli.Command {
	return &cli.Command{
		Name:  "sv",
		Usage: "Browse, search and resume Claude Code, Codex and OpenCode sessions",
		Description: `Reads the session logs each coding assistant keeps on disk:

   claude    ~/.claude/projects
   codex     ~/.codex/sessions
   opencode  ~/.local/share/opencode/storage

 Nothing is written or cached; every command re-reads the logs.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "claude-dir",
				Usage: "Claude Code projects directory",
			},
			&cli.StringFlag{
				Name:  "codex-dir",
				Usage: "Codex sessions directory",
			},
			&cli.StringFlag{
				Name:  "opencode-dir",
				Usage: "OpenCode storage directory",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			projectsCmd(),
			sessionsCmd(),
			messagesCmd(),
			searchCmd(),
			statsCmd(),
			resumeCmd(),
			watchCmd(),
			serveCmd(),
		},
	}
}
