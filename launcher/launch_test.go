package launcher

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeArgs(t *testing.T) {
	tests := []struct {
		tool core.Tool
		want []string
	}{
		{core.ToolClaude, []string{"claude", "--resume", "abc"}},
		{core.ToolCodex, []string{"codex", "resume", "abc"}},
		{core.ToolOpenCode, []string{"opencode", "--session", "abc"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			got, err := ResumeArgs(tt.tool, "abc")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResumeArgs("cursor", "abc")
	assert.True(t, errors.Is(err, core.ErrUnsupportedTool))
}

func TestBuildCommand(t *testing.T) {
	got, err := BuildCommand(core.ToolClaude, "/work/it's here", "abc")
	require.NoError(t, err)
	assert.Equal(t, `cd '/work/it'\''s here' && claude '--resume' 'abc'`, got)
}

func TestCommandsPerOS(t *testing.T) {
	t.Run("windows", func(t *testing.T) {
		l := &Launcher{GOOS: "windows"}
		cmds, err := l.Commands(core.ToolCodex, `C:\work`, "abc")
		require.NoError(t, err)
		require.Len(t, cmds, 1)
		assert.Equal(t, "cmd", cmds[0].Name)
		assert.Equal(t, []string{"/c", "start", "", "/d", `C:\work`, "cmd", "/k", "codex", "resume", "abc"}, cmds[0].Args)
	})

	t.Run("darwin", func(t *testing.T) {
		l := &Launcher{GOOS: "darwin"}
		cmds, err := l.Commands(core.ToolClaude, "/work", "abc")
		require.NoError(t, err)
		require.Len(t, cmds, 1)
		assert.Equal(t, "osascript", cmds[0].Name)
		assert.Contains(t, cmds[0].Args[1], `tell application "Terminal" to do script`)
		assert.Contains(t, cmds[0].Args[1], "cd '/work' && claude")
	})

	t.Run("linux", func(t *testing.T) {
		l := &Launcher{GOOS: "linux"}
		cmds, err := l.Commands(core.ToolOpenCode, "/work", "abc")
		require.NoError(t, err)
		names := make([]string, len(cmds))
		for i, c := range cmds {
			names[i] = c.Name
		}
		assert.Equal(t, []string{"gnome-terminal", "konsole", "xfce4-terminal", "xterm"}, names)
		assert.Equal(t, []string{"--", "bash", "-c", "cd '/work' && opencode '--session' 'abc'"}, cmds[0].Args)
	})
}

func TestResumeFallsThroughTerminals(t *testing.T) {
	dir := t.TempDir()
	var tried []string
	l := &Launcher{GOOS: "linux", Start: func(name string, args ...string) error {
		tried = append(tried, name)
		if name == "konsole" {
			return nil
		}
		return errors.New("not installed")
	}}

	require.NoError(t, l.Resume(core.ToolClaude, "abc", dir))
	assert.Equal(t, []string{"gnome-terminal", "konsole"}, tried)
}

func TestResumeNoTerminal(t *testing.T) {
	l := &Launcher{GOOS: "linux", Start: func(string, ...string) error { return errors.New("nope") }}
	err := l.Resume(core.ToolCodex, "abc", t.TempDir())
	assert.True(t, errors.Is(err, ErrNoTerminal))
}

func TestResumeMissingDir(t *testing.T) {
	l := &Launcher{GOOS: "linux", Start: func(string, ...string) error { return nil }}
	err := l.Resume(core.ToolCodex, "abc", filepath.Join(t.TempDir(), "gone"))
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, `C:\work\app`, NormalizePath("C:/work/app", "windows"))
	assert.Equal(t, "/work/app", NormalizePath(`\work\app`, "linux"))
}
