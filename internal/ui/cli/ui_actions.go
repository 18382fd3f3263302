package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelFunctions {
			m.mode = panelEdges
		} else {
			m.mode = panelFunctions
		}
		return m, nil
	case "h":
		m.showHistory = !m.showHistory
		return m, nil
	}

	if m.mode != panelFunctions {
		var cmd tea.Cmd
		m.edgeList, cmd = m.edgeList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		if len(m.functions) == 0 {
			return m, nil
		}
		idx := m.functionList.Index()
		if idx < 0 || idx >= len(m.functions) {
			idx = 0
		}
		m.selected = idx
		m.hasDetails = true
		return m, nil
	case "esc", "backspace":
		m.hasDetails = false
		return m, nil
	case "o":
		if !m.hasDetails || m.source == "" {
			return m, nil
		}
		line := 1
		if m.selected >= 0 && m.selected < len(m.functions) && m.functions[m.selected].line > 0 {
			line = m.functions[m.selected].line
		}
		return m, jumpToSourceCmd(sourceTarget{file: m.source, line: line})
	}

	var cmd tea.Cmd
	m.functionList, cmd = m.functionList.Update(msg)
	return m, cmd
}

type sourceTarget struct {
	file string
	line int
}

func editorArgs(editor string, target sourceTarget) []string {
	if strings.Contains(editor, "vim") || strings.Contains(editor, "nvim") || editor == "vi" || strings.HasSuffix(editor, "/vi") {
		return []string{fmt.Sprintf("+%d", target.line), target.file}
	}
	return []string{target.file}
}

func jumpToSourceCmd(target sourceTarget) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, editorArgs(editor, target)...)
	label := fmt.Sprintf("%s:%d", target.file, target.line)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sourceJumpResultMsg{target: label, err: err}
	})
}
