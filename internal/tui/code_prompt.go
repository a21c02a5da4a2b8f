package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the operator leaves the prompt without a code
var ErrCancelled = errors.New("authorization cancelled")

// CodePromptModel shows the authorization URL and reads the code pasted back
// from the browser.
type CodePromptModel struct {
	input     textinput.Model
	authURL   string
	status    string
	submitted bool
	cancelled bool
}

// NewCodePromptModel creates a model with a focused input
func NewCodePromptModel(authURL string) CodePromptModel {
	ti := textinput.New()
	ti.Placeholder = "paste the code parameter here"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Width = 64
	ti.Focus()

	return CodePromptModel{input: ti, authURL: authURL}
}

// Init returns the initial command for the prompt (cursor blink)
func (m CodePromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key events: enter submits, esc and ctrl+c cancel
func (m CodePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			if m.Code() == "" {
				m.status = "The code must not be empty"
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Code returns the trimmed input
func (m CodePromptModel) Code() string {
	return strings.TrimSpace(m.input.Value())
}

// Submitted reports whether the operator confirmed a code
func (m CodePromptModel) Submitted() bool {
	return m.submitted && !m.cancelled
}

// View renders the prompt
func (m CodePromptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Authorize subcount-bot"))
	b.WriteString("\n\nBrowse to:\n")
	b.WriteString(urlStyle.Render(m.authURL))
	b.WriteString("\n\nAuthorization code:\n")
	b.WriteString(m.input.View())
	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle(m.status))
	}
	b.WriteString("\n\n" + helpStyle("enter: submit • esc: cancel"))
	return docStyle.Render(b.String())
}

// CodePrompt runs CodePromptModel as a terminal program. It implements
// auth.Prompter.
type CodePrompt struct {
	in  io.Reader
	out io.Writer
}

// NewCodePrompt creates a prompt bound to the given terminal streams
func NewCodePrompt(in io.Reader, out io.Writer) *CodePrompt {
	return &CodePrompt{in: in, out: out}
}

// PromptCode shows authURL and waits for the operator to paste the code.
// The state is checked by the provider, not here.
func (p *CodePrompt) PromptCode(ctx context.Context, authURL, _ string) (string, error) {
	program := tea.NewProgram(
		NewCodePromptModel(authURL),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := program.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", fmt.Errorf("run code prompt: %w", err)
	}

	m, ok := final.(CodePromptModel)
	if !ok || !m.Submitted() {
		return "", ErrCancelled
	}
	return m.Code(), nil
}
