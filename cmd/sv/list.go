package main

import (
	"context"

	"github.com/Jiaweimsg/session-viewer/reader"
	"github.com/urfave/cli/v3"
)

func projectsCmd() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List projects that own at least one session",
		Flags: []cli.Flag{
			toolFlag("claude"),
			outputFlag("Output format: terminal, json"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			r, err := a.reader(cmd.String("tool"))
			if err != nil {
				return err
			}
			rnd, err := a.renderer(cmd.String("o"))
			if err != nil {
				return err
			}

			projects, err := r.Projects()
			if err != nil {
				return err
			}
			return rnd.Projects(stdout(cmd), projects)
		},
	}
}

func sessionsCmd() *cli.Command {
	return &cli.Command{
		Name:      "sessions",
		Usage:     "List the sessions of a project",
		ArgsUsage: "[project-key]",
		Flags: []cli.Flag{
			toolFlag("claude"),
			outputFlag("Output format: terminal, json"),
			&cli.BoolFlag{
				Name:  "grouped",
				Usage: "Nest sub-sessions under the session that spawned them",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			r, err := a.reader(cmd.String("tool"))
			if err != nil {
				return err
			}
			rnd, err := a.renderer(cmd.String("o"))
			if err != nil {
				return err
			}

			key := cmd.Args().First()
			if cmd.Bool("grouped") {
				groups, err := reader.SessionsGrouped(r, key)
				if err != nil {
					return err
				}
				return rnd.SessionGroups(stdout(cmd), groups)
			}

			sessions, err := r.Sessions(key)
			if err != nil {
				return err
			}
			return rnd.Sessions(stdout(cmd), sessions)
		},
	}
}
