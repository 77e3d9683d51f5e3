package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dataloop-ml/datakit/datautil"
	"github.com/dataloop-ml/datakit/stable"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateInput modelState = iota
	stateShowResult
)

type hashResult struct {
	digest string
	path   string
	size   int
}

type interactiveModel struct {
	err    error
	input  textinput.Model
	result hashResult
	state  modelState
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `{"split": "train", "shards": [1, 2, 3]}`
	ti.Prompt = "json: "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		input: ti,
		state: stateInput,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "enter":
			switch m.state {
			case stateInput:
				m.result, m.err = hashDocument(m.input.Value())
				m.state = stateShowResult
			case stateShowResult:
				m.state = stateInput
				m.err = nil
			}
			return m, nil

		case "esc":
			if m.state == stateShowResult {
				m.state = stateInput
				m.err = nil
				return m, nil
			}
			return m, tea.Quit
		}
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func hashDocument(text string) (hashResult, error) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return hashResult{}, fmt.Errorf("parse json: %w", err)
	}

	encoded, err := stable.Serialize(doc)
	if err != nil {
		return hashResult{}, err
	}
	digest, err := stable.Digest(doc)
	if err != nil {
		return hashResult{}, err
	}

	return hashResult{
		digest: digest,
		path:   stable.ShardedPath(digest),
		size:   len(encoded),
	}, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Stable Hash"))
	b.WriteString("\n\n")

	switch m.state {
	case stateInput:
		b.WriteString("Enter a JSON document to hash:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter hash • esc quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(fieldStyle.Render("digest  "))
			b.WriteString(resultStyle.Render(m.result.digest))
			b.WriteString("\n")
			b.WriteString(fieldStyle.Render("path    "))
			b.WriteString(resultStyle.Render(m.result.path))
			b.WriteString("\n")
			b.WriteString(fieldStyle.Render("encoded "))
			b.WriteString(resultStyle.Render(fmt.Sprintf("%s (%d bytes)",
				datautil.SizeStr(int64(m.result.size)), m.result.size)))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter new document • ctrl+c quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
