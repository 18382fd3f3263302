package cli

import (
	"fmt"
	"strings"
	"time"

	"funcgraph/internal/core/app"
	"funcgraph/internal/data/history"
	"funcgraph/internal/engine/graph"
	"funcgraph/internal/engine/parser"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	anonymousStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelFunctions panelMode = iota
	panelEdges
)

// functionEntry is the per-row state behind the function list.
type functionEntry struct {
	name      string
	kind      parser.FunctionKind
	line      int
	params    []string
	callees   []string
	recursive bool
}

type model struct {
	functionList list.Model
	edgeList     list.Model
	mode         panelMode
	source       string
	functions    []functionEntry
	runs         []history.Snapshot
	showHistory  bool
	lastErr      error
	lastUpdate   time.Time
	runID        string
	anonymous    int
	depEdges     int
	flowEdges    int

	selected         int
	hasDetails       bool
	sourceJumpStatus string
}

type updateMsg struct {
	result *app.Result
	err    error
	runs   []history.Snapshot
}

type sourceJumpResultMsg struct {
	target string
	err    error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.functionList.SetSize(width, height)
		m.edgeList.SetSize(width, height)
	case updateMsg:
		m.lastUpdate = time.Now()
		if msg.runs != nil {
			m.runs = msg.runs
		}
		m.lastErr = msg.err
		if msg.err != nil || msg.result == nil {
			break
		}
		m = applyResult(m, msg.result)
	case sourceJumpResultMsg:
		if msg.err != nil {
			m.sourceJumpStatus = statusStyle.Render(fmt.Sprintf("Source jump failed: %v", msg.err))
		} else {
			m.sourceJumpStatus = statusStyle.Render(fmt.Sprintf("Opened source: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	if m.mode == panelFunctions {
		m.functionList, cmd = m.functionList.Update(msg)
	} else {
		m.edgeList, cmd = m.edgeList.Update(msg)
	}
	return m, cmd
}

// applyResult keeps the last good analysis on screen; a failed run only
// changes the status line.
func applyResult(m model, result *app.Result) model {
	m.source = result.Path
	m.runID = result.RunID
	m.anonymous = result.AnonymousCount()
	m.depEdges = result.Dependencies.EdgeCount()
	m.flowEdges = result.ControlFlow.EdgeCount()

	m.functions = make([]functionEntry, 0, len(result.Functions))
	items := make([]list.Item, 0, len(result.Functions))
	for _, fn := range result.Functions {
		entry := functionEntry{
			name:   fn.Name,
			kind:   fn.Kind,
			line:   fn.Line,
			params: fn.Params,
		}
		if fn.Kind == parser.KindDeclaration {
			entry.callees = result.Dependencies.Callees(fn.Name)
			entry.recursive = result.Dependencies.HasEdge(fn.Name, fn.Name)
		}
		m.functions = append(m.functions, entry)
		items = append(items, item{
			title: fn.Name,
			desc:  fmt.Sprintf("%s (%s) line %d", fn.Kind, strings.Join(fn.Params, ", "), fn.Line),
		})
	}
	m.functionList.SetItems(items)
	m.edgeList.SetItems(edgeItems(result.Dependencies, result.ControlFlow))

	if m.selected >= len(m.functions) {
		m.selected = 0
		m.hasDetails = false
	}
	return m
}

func edgeItems(deps *graph.DependencyGraph, flow *graph.ControlFlowGraph) []list.Item {
	items := make([]list.Item, 0, deps.EdgeCount()+flow.EdgeCount())
	for _, edge := range deps.Edges() {
		items = append(items, item{title: edge.From + " -> " + edge.To, desc: "calls"})
	}
	for _, edge := range flow.Edges() {
		items = append(items, item{title: edge.From + " -> " + edge.To, desc: "top-level call"})
	}
	return items
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %s | %d functions | %d calls | %d top-level calls",
		m.lastUpdate.Format("15:04:05"), m.source, len(m.functions), m.depEdges, m.flowEdges))

	var summary string
	switch {
	case m.lastErr != nil:
		summary = errorStyle.Render("Analysis failed: " + m.lastErr.Error())
	case m.anonymous > 0:
		summary = anonymousStyle.Render(fmt.Sprintf("%d anonymous", m.anonymous))
	default:
		summary = successStyle.Render("All functions named")
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Function Graph Monitor"), status, summary)
	help := renderHelp(m)

	body := m.functionList.View()
	if m.mode == panelEdges {
		body = m.edgeList.View()
	}
	if m.hasDetails {
		body += "\n\n" + renderDetails(m)
	}
	if m.showHistory {
		body += "\n\n" + renderHistory(m.runs)
	}
	if m.sourceJumpStatus != "" {
		body += "\n\n" + m.sourceJumpStatus
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func renderHelp(m model) string {
	if m.mode == panelEdges {
		return statusStyle.Render("tab: functions | h: history | q: quit")
	}
	return statusStyle.Render("tab: edges | enter: details | esc: close | o: open in $EDITOR | h: history | q: quit")
}

func renderDetails(m model) string {
	if m.selected < 0 || m.selected >= len(m.functions) {
		return ""
	}
	fn := m.functions[m.selected]
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s at line %d", titleStyle(fn.name), fn.kind, fn.line))
	if fn.recursive {
		b.WriteString(anonymousStyle.Render("  recursive"))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("params: [%s]\n", strings.Join(fn.params, ", ")))
	if len(fn.callees) == 0 {
		b.WriteString("calls: none")
	} else {
		b.WriteString("calls: " + strings.Join(fn.callees, ", "))
	}
	return b.String()
}

func renderHistory(runs []history.Snapshot) string {
	if len(runs) == 0 {
		return statusStyle.Render("No recorded runs.")
	}
	var b strings.Builder
	b.WriteString("Recent runs\n")
	for _, run := range runs {
		b.WriteString(fmt.Sprintf("%s  functions=%d deps=%d flow=%d\n",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.FunctionCount,
			run.DependencyEdges,
			run.ControlFlowEdges,
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

func initialModel(source string) model {
	functionList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	functionList.Title = "Functions"
	functionList.SetShowStatusBar(false)
	functionList.SetFilteringEnabled(true)

	edgeList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	edgeList.Title = "Call Edges"
	edgeList.SetShowStatusBar(false)
	edgeList.SetFilteringEnabled(true)

	return model{
		functionList: functionList,
		edgeList:     edgeList,
		mode:         panelFunctions,
		source:       source,
		lastUpdate:   time.Now(),
	}
}
