package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatbuf/config"
	"chatbuf/model"
)

const (
	textareaHeight = 3
	statusHeight   = 1
)

// startPromptMsg carries a prompt given on the command line into the event
// loop, where it is sent like a typed one.
type startPromptMsg struct {
	prompt string
}

// AppView is the terminal front end: the conversation buffer in a viewport,
// a status line and a compose area.
type AppView struct {
	ctrl *model.Controller
	cfg  *config.Config
	keys keyMap

	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	width  int
	height int
	ready  bool

	showHelp bool
	status   string
	statusIs statusKind

	// fatal replaces the whole UI once set
	fatal *ErrorModal

	initialPrompt string
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusError
)

func NewAppView(cfg *config.Config, ctrl *model.Controller, initialPrompt string) AppView {
	keys := newKeyMap(cfg.KeyBindings)

	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Type here. %s sends, %s starts a new conversation.",
		keys.Send.Help().Key, keys.NewConversation.Help().Key)
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(textareaHeight)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = keys.Newline

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = PendingStyle

	return AppView{
		ctrl:           ctrl,
		cfg:            cfg,
		keys:           keys,
		viewport:       viewport.New(0, 0),
		textarea:       ta,
		loadingSpinner: sp,
		initialPrompt:  initialPrompt,
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if strings.TrimSpace(a.initialPrompt) != "" {
		prompt := a.initialPrompt
		cmds = append(cmds, func() tea.Msg { return startPromptMsg{prompt: prompt} })
	}
	return tea.Batch(cmds...)
}

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.fatal != nil {
		m, cmd := a.fatal.Update(msg)
		modal := m.(ErrorModal)
		a.fatal = &modal
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.ready = true
		a.refresh(true)
		return a, nil

	case startPromptMsg:
		a.textarea.SetValue(msg.prompt)
		return a, a.sendCmd(a.submit(true))

	case spinner.TickMsg:
		if !a.pending() {
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if handled, err := a.ctrl.HandleMsg(msg); handled {
		if err != nil {
			a.reportError(err)
		} else {
			a.setStatus(statusInfo, "")
		}
		a.refresh(true)
		if a.fatal != nil {
			return a, a.fatal.Init()
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.showHelp = false
		} else if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.Send):
		return a, a.sendCmd(a.submit(false))

	case key.Matches(msg, a.keys.NewConversation):
		return a, a.sendCmd(a.submit(true))

	case key.Matches(msg, a.keys.YankLast):
		a.yankLastReply()
		return a, nil

	case key.Matches(msg, a.keys.ScrollUp):
		a.viewport.HalfPageUp()
		return a, nil

	case key.Matches(msg, a.keys.ScrollDown):
		a.viewport.HalfPageDown()
		return a, nil

	case key.Matches(msg, a.keys.PageUp):
		a.viewport.PageUp()
		return a, nil

	case key.Matches(msg, a.keys.PageDown):
		a.viewport.PageDown()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submit hands the composed text to the controller. With fresh set, or when
// no conversation is open yet, the text starts a new conversation; otherwise
// it is typed at the end of the buffer as a user turn and the whole buffer
// is sent. It returns the request command, or nil when nothing was sent.
func (a *AppView) submit(fresh bool) tea.Cmd {
	text := a.textarea.Value()
	s := a.ctrl.Default()

	if s != nil && s.Pending() {
		a.setStatus(statusError, "Still waiting for the previous reply")
		return nil
	}

	var (
		cmd tea.Cmd
		err error
	)
	if fresh || s == nil || !s.InConversation() {
		config.DebugLog.Debug().Bool("fresh", fresh).Int("len", len(text)).Msg("starting conversation")
		cmd, err = a.ctrl.StartConversation(text)
		if err == nil {
			a.textarea.Reset()
		}
	} else {
		if text != "" {
			s.Buffer.SetPoint(s.Buffer.Len())
			if needsLineBreak(s) {
				text = "\n" + text
			}
			s.Type(text)
			a.textarea.Reset()
		}
		config.DebugLog.Debug().Int("len", len(text)).Msg("continuing conversation")
		cmd, err = a.ctrl.ContinueConversation()
	}

	if err != nil {
		a.reportError(err)
		a.refresh(true)
		return nil
	}

	a.setStatus(statusInfo, "")
	a.refresh(true)
	return cmd
}

// sendCmd pairs a request with the spinner animation.
func (a AppView) sendCmd(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, a.loadingSpinner.Tick)
}

// needsLineBreak reports whether text typed at the end of the buffer would
// run on from the previous line.
func needsLineBreak(s *model.Session) bool {
	n := s.Buffer.Len()
	return n > 0 && s.Buffer.Substring(n-1, n) != "\n"
}

func (a *AppView) yankLastReply() {
	s := a.ctrl.Default()
	if s == nil {
		a.setStatus(statusError, "No conversation yet")
		return
	}
	reply, ok := s.LastAssistantReply()
	if !ok {
		a.setStatus(statusError, "No reply to copy")
		return
	}
	if err := clipboard.WriteAll(reply); err != nil {
		a.reportError(fmt.Errorf("copy failed: %w", err))
		return
	}
	a.setStatus(statusInfo, "Copied last reply")
}

// reportError routes an error to the right surface. A missing credential
// cannot be fixed from inside the UI, so it ends the session with
// instructions; a stale reply is dropped silently.
func (a *AppView) reportError(err error) {
	var credErr *config.CredentialError
	switch {
	case errors.As(err, &credErr):
		config.DebugLog.Warn().Str("service", credErr.Service).Err(credErr.Err).Msg("credential unavailable")
		modal := NewErrorModal("API key required", credErr.Instructions())
		modal.width, modal.height = a.width, a.height
		a.fatal = &modal
	case errors.Is(err, model.ErrStaleResponse):
		config.DebugLog.Debug().Msg("stale reply dropped")
	default:
		config.DebugLog.Error().Err(err).Msg("request failed")
		a.setStatus(statusError, err.Error())
	}
}

func (a *AppView) setStatus(kind statusKind, text string) {
	a.statusIs = kind
	a.status = text
}

func (a AppView) pending() bool {
	s := a.ctrl.Default()
	return s != nil && s.Pending()
}

func (a *AppView) resize() {
	a.textarea.SetWidth(a.width)
	vpHeight := a.height - textareaHeight - statusHeight - 1
	if vpHeight < 1 {
		vpHeight = 1
	}
	a.viewport.Width = a.width
	a.viewport.Height = vpHeight
}

func (a *AppView) refresh(gotoBottom bool) {
	var content string
	if s := a.ctrl.Default(); s != nil {
		content = renderConversation(s.Buffer, a.viewport.Width, a.cfg.RenderMarkdown)
	} else {
		content = renderConversation(nil, a.viewport.Width, false)
	}
	a.viewport.SetContent(content)
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a AppView) statusLine() string {
	p := a.ctrl.Provider()
	left := StatusStyle.Render(fmt.Sprintf("%s · %s", p.Name(), p.GetModel()))

	switch {
	case a.pending():
		left += "  " + a.loadingSpinner.View() + PendingStyle.Render(" waiting for reply")
	case a.status != "" && a.statusIs == statusError:
		left += "  " + ErrorStatusStyle.Render(a.status)
	case a.status != "":
		left += "  " + StatusStyle.Render(a.status)
	}

	right := FormatFooter(a.keys.Help.Help().Key, "Help")
	space := a.width - lipgloss.Width(right) - 1
	if space < 0 {
		return padRight(left, a.width)
	}
	return padRight(left, space) + " " + right
}

func (a AppView) View() string {
	if a.fatal != nil {
		return a.fatal.View()
	}
	if !a.ready {
		return "Loading chatbuf..."
	}
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.viewport.View(),
		a.statusLine(),
		"",
		a.textarea.View(),
	)
}
