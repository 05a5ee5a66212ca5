package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jiaweimsg/session-viewer/server"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	flags := []cli.Flag{
		toolFlag(allTools),
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Address to listen on",
			Value: "127.0.0.1:8080",
		},
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve sessions over a local HTTP API with HTML session pages",
		Description: `Routes:

   GET /api/tools
   GET /api/search?q=&tool=&max=
   GET /api/{tool}/projects
   GET /api/{tool}/sessions?project=&grouped=
   GET /api/{tool}/sessions/{session}/messages?project=&page=&page_size=&compact=
   GET /api/{tool}/stats?tokens=
   GET /{tool}/sessions/{session}?project=&page=`,
		Flags: append(flags, redactFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			readers, err := a.readersFor(cmd.String("tool"))
			if err != nil {
				return err
			}
			redactor, err := newRedactor(cmd)
			if err != nil {
				return err
			}

			srv := server.New(readers, redactor, a.cfg.PageSize, a.cfg.MaxResults)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cmd.String("addr"))
		},
	}
}
