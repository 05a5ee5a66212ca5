// Package launcher opens a terminal that resumes a session with the tool
// that recorded it.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
)

// ErrNoTerminal is returned when no supported terminal emulator could be
// started.
var ErrNoTerminal = errors.New("no supported terminal emulator found")

// Command is one way of opening a terminal.
type Command struct {
	Name string
	Args []string
}

// Launcher spawns terminals. The zero value targets the running OS.
type Launcher struct {
	// GOOS overrides runtime.GOOS.
	GOOS string
	// Start overrides how a command is started. It must not wait for the
	// terminal to exit.
	Start func(name string, args ...string) error
}

// ResumeArgs returns the argv that resumes sessionID with tool.
func ResumeArgs(tool core.Tool, sessionID string) ([]string, error) {
	switch tool {
	case core.ToolClaude:
		return []string{"claude", "--resume", sessionID}, nil
	case core.ToolCodex:
		return []string{"codex", "resume", sessionID}, nil
	case core.ToolOpenCode:
		return []string{"opencode", "--session", sessionID}, nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedTool, tool)
	}
}

// BuildCommand returns the shell command that resumes sessionID in dir.
func BuildCommand(tool core.Tool, dir, sessionID string) (string, error) {
	argv, err := ResumeArgs(tool, sessionID)
	if err != nil {
		return "", err
	}
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	quoted[0] = argv[0]
	return fmt.Sprintf("cd %s && %s", shellQuote(dir), strings.Join(quoted, " ")), nil
}

// Commands lists the terminal invocations to try, in order, for the
// launcher's OS.
func (l *Launcher) Commands(tool core.Tool, dir, sessionID string) ([]Command, error) {
	argv, err := ResumeArgs(tool, sessionID)
	if err != nil {
		return nil, err
	}

	switch l.goos() {
	case "windows":
		args := append([]string{"/c", "start", "", "/d", dir, "cmd", "/k"}, argv...)
		return []Command{{Name: "cmd", Args: args}}, nil

	case "darwin":
		shell, _ := BuildCommand(tool, dir, sessionID)
		script := fmt.Sprintf(`tell application "Terminal" to do script %q`, shell)
		return []Command{{Name: "osascript", Args: []string{"-e", script}}}, nil

	default:
		shell, _ := BuildCommand(tool, dir, sessionID)
		wrapped := "bash -c " + shellQuote(shell)
		return []Command{
			{Name: "gnome-terminal", Args: []string{"--", "bash", "-c", shell}},
			{Name: "konsole", Args: []string{"-e", "bash", "-c", shell}},
			{Name: "xfce4-terminal", Args: []string{"-e", wrapped}},
			{Name: "xterm", Args: []string{"-e", "bash", "-c", shell}},
		}, nil
	}
}

// Resume opens a terminal in workDir running the tool's resume command. The
// first terminal that starts wins.
func (l *Launcher) Resume(tool core.Tool, sessionID, workDir string) error {
	dir := NormalizePath(workDir, l.goos())
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: working directory %s", core.ErrNotFound, dir)
	}

	cmds, err := l.Commands(tool, dir, sessionID)
	if err != nil {
		return err
	}
	for _, c := range cmds {
		if err := l.start(c.Name, c.Args...); err != nil {
			log.Debug("terminal did not start", "terminal", c.Name, "err", err)
			continue
		}
		log.Info("resumed session", "tool", tool, "session", sessionID, "dir", dir, "terminal", c.Name)
		return nil
	}
	return ErrNoTerminal
}

func (l *Launcher) goos() string {
	if l.GOOS != "" {
		return l.GOOS
	}
	return runtime.GOOS
}

func (l *Launcher) start(name string, args ...string) error {
	if l.Start != nil {
		return l.Start(name, args...)
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// NormalizePath converts separators to the target OS's convention.
func NormalizePath(path, goos string) string {
	if goos == "windows" {
		return strings.ReplaceAll(path, "/", `\`)
	}
	return strings.ReplaceAll(path, `\`, "/")
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
