package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/petasbytes/dora-assist/internal/bridge"
	"github.com/petasbytes/dora-assist/internal/runner"
	"github.com/petasbytes/dora-assist/memory"
)

// pollMsg fires once per frame to drain the runtime mailbox.
type pollMsg time.Time

// outcomeMsg carries an inline turn result back to Update.
type outcomeMsg runner.Outcome

// model is the chat screen. Exactly one of rt and inline is set.
type model struct {
	rt     *bridge.RuntimeState
	inline *bridge.Inline

	conv     memory.Conversation
	pending  int // inline turns still running
	notice   string
	interval time.Duration

	input    textinput.Model
	vp       viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer
	width    int
}

func newModel(rt *bridge.RuntimeState, inline *bridge.Inline, interval time.Duration) model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	m := model{
		rt:       rt,
		inline:   inline,
		interval: interval,
		input:    ti,
		vp:       viewport.New(80, 20),
		spin:     s,
	}
	if m.apiKey() == "" {
		m.notice = "No API key set. Type /key <your-key>"
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spin.Tick}
	if m.rt != nil {
		cmds = append(cmds, m.poll())
	}
	return tea.Batch(cmds...)
}

func (m model) poll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

func (m model) apiKey() string {
	if m.rt != nil {
		return m.rt.APIKey()
	}
	return m.inline.APIKey()
}

func (m *model) setAPIKey(key string) {
	if m.rt != nil {
		m.rt.SetAPIKey(key)
		return
	}
	m.inline.SetAPIKey(key)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.renderer = newRenderer(msg.Width)
		m.refresh()
		return m, nil

	case pollMsg:
		if out, ok := m.rt.Poll(); ok {
			m.deliver(out)
		}
		return m, m.poll()

	case outcomeMsg:
		m.deliver(runner.Outcome(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles the input line: a slash command or a new user message.
func (m model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" {
		return m, nil
	}

	switch {
	case line == "/key" || strings.HasPrefix(line, "/key "):
		key := strings.TrimSpace(strings.TrimPrefix(line, "/key"))
		m.setAPIKey(key)
		if key == "" {
			m.notice = "API key cleared"
		} else {
			m.notice = "API key set"
		}
		return m, nil
	case line == "/clear":
		m.conv = memory.Conversation{}
		m.notice = "Conversation cleared"
		m.refresh()
		return m, nil
	}

	next := m.conv.Clone()
	next.AppendUser(line)

	if m.inline != nil {
		m.conv = next
		m.pending++
		m.notice = ""
		m.refresh()
		in, snapshot := m.inline, next.Clone()
		return m, func() tea.Msg {
			return outcomeMsg(in.Run(context.Background(), snapshot))
		}
	}

	if err := m.rt.Submit(next); err != nil {
		if errors.Is(err, bridge.ErrQueueFull) {
			m.notice = "Too many pending requests, try again shortly"
		} else {
			m.notice = err.Error()
		}
		m.input.SetValue(line)
		return m, nil
	}
	m.conv = next
	m.notice = ""
	m.refresh()
	return m, nil
}

// deliver appends a finished turn to the transcript.
func (m *model) deliver(out runner.Outcome) {
	if m.inline != nil && m.pending > 0 {
		m.pending--
	}
	text := out.Text
	if out.IsError() {
		text = "Error: " + text
	}
	m.conv.AppendAssistant(text)
	m.refresh()
}

// busy reports whether a turn is still running. The runtime's in-flight count
// is used because the mailbox may overwrite an Outcome before it is polled.
func (m model) busy() bool {
	if m.rt != nil {
		return m.rt.InFlight() > 0
	}
	return m.pending > 0
}

func (m *model) refresh() {
	m.vp.SetContent(renderTranscript(m.renderer, m.conv.Messages()))
	m.vp.GotoBottom()
}

func (m model) View() string {
	var status string
	switch {
	case m.busy():
		status = m.spin.View() + " Thinking..."
	case m.notice != "":
		status = noticeStyle.Render(m.notice)
	}
	return titleStyle.Render("dora-assist") + "\n" +
		m.vp.View() + "\n" +
		status + "\n" +
		m.input.View()
}
