package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/bookkeeper/internal/ledger"
)

type accountsLoadedMsg struct {
	accounts []ledger.Account
	err      error
}

// accountDeleteConfirmedMsg is sent when the user confirms deletion in the TUI.
type accountDeleteConfirmedMsg struct {
	id string
}

// accountDeletedMsg is sent after the server processes the delete.
type accountDeletedMsg struct {
	id  string
	err error
}

type accountRenameRequestMsg struct {
	id   string
	name string
}

type accountRenamedMsg struct {
	id  string
	err error
}

type accountListModel struct {
	accounts      []ledger.Account
	cursor        int
	loading       bool
	err           error
	width         int
	height        int
	confirmDelete bool
	renaming      bool
	nameInput     textinput.Model
	targetID      string
}

func (m *accountListModel) init(s *session) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		accounts, err := s.client.ListAccounts(context.Background(), s.company, "")
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m accountListModel) update(msg tea.Msg) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		m.loading = false
		m.accounts = msg.accounts
		m.err = msg.err
		if m.cursor >= len(m.accounts) {
			m.cursor = max(len(m.accounts)-1, 0)
		}

	case accountDeletedMsg:
		m.confirmDelete = false
		m.targetID = ""
		m.err = msg.err

	case accountRenamedMsg:
		m.renaming = false
		m.targetID = ""
		m.err = msg.err

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				id := m.targetID
				m.confirmDelete = false
				return m, func() tea.Msg {
					return accountDeleteConfirmedMsg{id: id}
				}
			default:
				m.confirmDelete = false
				m.targetID = ""
			}
			return m, nil
		}

		if m.renaming {
			switch msg.Type {
			case tea.KeyEnter:
				id, name := m.targetID, strings.TrimSpace(m.nameInput.Value())
				if name == "" {
					return m, nil
				}
				return m, func() tea.Msg {
					return accountRenameRequestMsg{id: id, name: name}
				}
			case tea.KeyEsc:
				m.renaming = false
				m.targetID = ""
				return m, nil
			}
			var cmd tea.Cmd
			m.nameInput, cmd = m.nameInput.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.accounts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if a := m.selected(); a != nil {
				m.confirmDelete = true
				m.targetID = a.ID
				m.err = nil
			}
		case key.Matches(msg, keys.Rename):
			if a := m.selected(); a != nil {
				m.renaming = true
				m.targetID = a.ID
				m.nameInput = textinput.New()
				m.nameInput.Placeholder = "Account name"
				m.nameInput.CharLimit = 80
				m.nameInput.SetValue(a.Name)
				m.err = nil
				return m, m.nameInput.Focus()
			}
		}
	}
	return m, nil
}

func (m *accountListModel) selected() *ledger.Account {
	if m.cursor >= 0 && m.cursor < len(m.accounts) {
		return &m.accounts[m.cursor]
	}
	return nil
}

func (m *accountListModel) view() string {
	if m.loading {
		return "Loading accounts..."
	}
	if m.err != nil && !m.renaming && !m.confirmDelete && len(m.accounts) == 0 {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.accounts) == 0 {
		return dimStyle.Render("No accounts found. Create one with 'bookkeeper account create'.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Chart of Accounts"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-8s %-32s %-10s %-7s %s", "CODE", "NAME", "TYPE", "NORMAL", "SYSTEM")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.accounts) && i < start+maxRows; i++ {
		a := m.accounts[i]
		name := a.Name
		if len(name) > 30 {
			name = name[:28] + ".."
		}
		sys := ""
		if a.IsSystem {
			sys = "yes"
		}

		line := fmt.Sprintf("  %-8s %-32s %-10s %-7s %s", a.Code, name, a.Type.Label(), a.Type.NormalSide(), sys)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		b.WriteString("\n" + errorStyle.Render("  Delete this account? (y/n)"))
	case m.renaming:
		b.WriteString("\n  Rename: " + m.nameInput.View())
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()))
	default:
		b.WriteString(fmt.Sprintf("\n  %d accounts", len(m.accounts)))
	}

	return b.String()
}
