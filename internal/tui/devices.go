// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"iqscope/internal/source"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// deviceListModel is the Bubble Tea model for browsing capture devices.
type deviceListModel struct {
	devices       []source.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
}

type devicesMsg struct {
	devices []source.Device
}

type errMsg struct {
	err error
}

// RunDeviceList shows the interactive device browser. PortAudio must be
// initialized by the caller.
func RunDeviceList() error {
	p := tea.NewProgram(deviceListModel{}, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m deviceListModel) Init() tea.Cmd {
	return fetchDevices
}

func fetchDevices() tea.Msg {
	devices, err := source.GetDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

func (m deviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"))):
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.viewport.SetContent(m.renderDevices())
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if m.selectedIndex < len(m.devices)-1 {
				m.selectedIndex++
				m.viewport.SetContent(m.renderDevices())
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m deviceListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error listing devices: %v\n\nPress q to quit.", m.err)
	}
	if !m.ready {
		return "Scanning capture devices..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("IQ Capture Devices"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ select · q quit"))
	return b.String()
}

func (m deviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No devices found."
	}

	var b strings.Builder
	for i, d := range m.devices {
		line := fmt.Sprintf("[%d] %s", d.ID, d.Name)
		if i == m.selectedIndex {
			b.WriteString(highlightStyle.Render("> " + line))
		} else {
			b.WriteString(infoStyle.Render("  " + line))
		}
		b.WriteString("\n")

		detail := fmt.Sprintf("    %d input channels · %.0f Hz · latency %.2f-%.2f ms",
			d.MaxInputChannels,
			d.DefaultSampleRate,
			d.LowLatency.Seconds()*1000,
			d.HighLatency.Seconds()*1000)
		if d.MaxInputChannels >= 2 {
			detail += " · IQ capable"
		}
		b.WriteString(dimStyle.Render(detail))
		b.WriteString("\n")
	}
	return b.String()
}
