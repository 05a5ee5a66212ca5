package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Jiaweimsg/session-viewer/config"
	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/reader"
	"github.com/Jiaweimsg/session-viewer/reader/claude"
	"github.com/Jiaweimsg/session-viewer/reader/codex"
	"github.com/Jiaweimsg/session-viewer/reader/opencode"
	"github.com/Jiaweimsg/session-viewer/redact"
	"github.com/Jiaweimsg/session-viewer/render"
	htmlrender "github.com/Jiaweimsg/session-viewer/render/html"
	jsonrender "github.com/Jiaweimsg/session-viewer/render/json"
	"github.com/Jiaweimsg/session-viewer/render/terminal"
	"github.com/urfave/cli/v3"
)

// allTools selects every reader in commands that accept it.
const allTools = "all"

// app holds the resolved config and the reader and renderer registries used
// by CLI commands.
type app struct {
	cfg       *config.Config
	readers   map[core.Tool]func() reader.Reader
	renderers map[string]func() render.Renderer
}

func newApp(cfg *config.Config) *app {
	return &app{
		cfg: cfg,
		readers: map[core.Tool]func() reader.Reader{
			core.ToolClaude: func() reader.Reader {
				return &claude.Reader{Dir: cfg.ClaudeDir, StatsFile: cfg.ClaudeStatsFile, Workers: cfg.Workers}
			},
			core.ToolCodex: func() reader.Reader {
				return &codex.Reader{Dir: cfg.CodexDir, Workers: cfg.Workers}
			},
			core.ToolOpenCode: func() reader.Reader {
				return &opencode.Reader{Dir: cfg.OpenCodeDir, Workers: cfg.Workers}
			},
		},
		renderers: map[string]func() render.Renderer{
			"terminal": func() render.Renderer { return terminal.New() },
			"json":     func() render.Renderer { return jsonrender.New(true) },
		},
	}
}

// loadApp resolves the config from --config, the environment and the root
// directory flags.
func loadApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("claude-dir"); v != "" {
		cfg.ClaudeDir = v
	}
	if v := cmd.String("codex-dir"); v != "" {
		cfg.CodexDir = v
	}
	if v := cmd.String("opencode-dir"); v != "" {
		cfg.OpenCodeDir = v
	}
	return newApp(cfg), nil
}

func (a *app) reader(tag string) (reader.Reader, error) {
	tool, err := core.ParseTool(tag)
	if err != nil {
		return nil, err
	}
	fn, ok := a.readers[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedTool, tag)
	}
	return fn(), nil
}

// readersFor returns the reader for tag, or every reader when tag is "all".
func (a *app) readersFor(tag string) ([]reader.Reader, error) {
	if tag != allTools {
		r, err := a.reader(tag)
		if err != nil {
			return nil, err
		}
		return []reader.Reader{r}, nil
	}
	out := make([]reader.Reader, 0, len(core.Tools))
	for _, tool := range core.Tools {
		out = append(out, a.readers[tool]())
	}
	return out, nil
}

func (a *app) renderer(name string) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return fn(), nil
}

// messageRenderer also accepts "html", which only renders message pages.
func (a *app) messageRenderer(name, title string) (render.MessageRenderer, error) {
	if name == "html" {
		r := htmlrender.New()
		r.Title = title
		return r, nil
	}
	return a.renderer(name)
}

// newRedactor builds a Redactor from CLI flags. Returns nil when --no-redact is set.
func newRedactor(cmd *cli.Command) (*redact.Redactor, error) {
	if cmd.Bool("no-redact") {
		return nil, nil
	}

	cfg := redact.Config{}
	rules := cmd.StringSlice("redact")

	if len(rules) == 0 {
		cfg.Secrets = true
		cfg.PII = true
	} else {
		for _, r := range rules {
			switch r {
			case "secrets":
				cfg.Secrets = true
			case "pii":
				cfg.PII = true
			default:
				return nil, fmt.Errorf("unknown redaction rule %q", r)
			}
		}
	}

	return redact.New(cfg), nil
}

// stdout is where command output goes. Tests replace the root writer.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func toolFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "tool",
		Aliases: []string{"t"},
		Usage:   "Tool: claude, codex, opencode",
		Value:   value,
	}
}

func outputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "o",
		Usage: usage,
		Value: "terminal",
	}
}

func redactFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-redact",
			Usage: "Disable redaction of secrets and PII",
		},
		&cli.StringSliceFlag{
			Name:  "redact",
			Usage: "Allowlist of rules to redact. Example: --redact=secrets,pii",
		},
	}
}
