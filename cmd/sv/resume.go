package main

import (
	"context"
	"fmt"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/launcher"
	"github.com/Jiaweimsg/session-viewer/reader"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// newLauncher is replaced in tests.
var newLauncher = func() *launcher.Launcher { return &launcher.Launcher{} }

func resumeCmd() *cli.Command {
	return &cli.Command{
		Name:      "resume",
		Usage:     "Open a terminal that resumes a session with its tool",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			toolFlag("claude"),
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "Project key to look the session up in (default: all projects)",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Working directory to resume in (default: the session's project path)",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the shell command instead of opening a terminal",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("a session id is required")
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			r, err := a.reader(cmd.String("tool"))
			if err != nil {
				return err
			}

			workDir := cmd.String("dir")
			var filePath string
			if s, ok := findSession(r, cmd.String("project"), id); ok {
				id = s.ID
				filePath = s.FilePath
				if workDir == "" {
					workDir = s.ProjectPath
				}
			}
			if workDir == "" {
				return fmt.Errorf("%w: working directory of session %s, pass --dir", core.ErrNotFound, id)
			}
			dir := reader.ResolveWorkDir(r, id, workDir, filePath)

			if cmd.Bool("print") {
				line, err := launcher.BuildCommand(r.Tool(), dir, id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout(cmd), line)
				return err
			}
			return newLauncher().Resume(r.Tool(), id, dir)
		},
	}
}

// findSession looks id up by session id or file path, in project when given
// and in every project otherwise.
func findSession(r reader.Reader, project, id string) (core.Session, bool) {
	keys := []string{project}
	if project == "" {
		projects, err := r.Projects()
		if err != nil {
			log.Debug("list projects", "tool", r.Tool(), "err", err)
			return core.Session{}, false
		}
		keys = keys[:0]
		for _, p := range projects {
			keys = append(keys, p.Key)
		}
	}
	for _, key := range keys {
		sessions, err := r.Sessions(key)
		if err != nil {
			log.Debug("list sessions", "tool", r.Tool(), "project", key, "err", err)
			continue
		}
		for _, s := range sessions {
			if s.ID == id || s.FilePath == id {
				return s, true
			}
		}
	}
	return core.Session{}, false
}
