package accounts

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	accounts []domain.Account
	opts     RenderOptions
	styles   styles
	output   string
}

func newModel(accounts []domain.Account, opts RenderOptions) model {
	return model{
		accounts: accounts,
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.accounts, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func Render(accounts []domain.Account, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(accounts, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
