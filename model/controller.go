package model

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatbuf/buffer"
	"chatbuf/config"
)

// DefaultSessionName names the surface the top-level commands operate on.
const DefaultSessionName = "*chat*"

// Controller owns the named conversation sessions and routes replies back to
// them. It is only used from the bubbletea event loop.
type Controller struct {
	provider    Provider
	credentials CredentialSource
	timeout     time.Duration
	sessions    map[string]*Session
}

func NewController(p Provider, creds CredentialSource, timeout time.Duration) *Controller {
	return &Controller{
		provider:    p,
		credentials: creds,
		timeout:     timeout,
		sessions:    make(map[string]*Session),
	}
}

// Provider returns the backend new sessions send to.
func (c *Controller) Provider() Provider {
	return c.provider
}

// Session returns the session called name, or nil.
func (c *Controller) Session(name string) *Session {
	return c.sessions[name]
}

// Default returns the default session, or nil before the first Start.
func (c *Controller) Default() *Session {
	return c.sessions[DefaultSessionName]
}

// StartConversation starts a new conversation on the default session.
func (c *Controller) StartConversation(prompt string) (tea.Cmd, error) {
	return c.Start(DefaultSessionName, prompt)
}

// ContinueConversation resends the default session's conversation.
func (c *Controller) ContinueConversation() (tea.Cmd, error) {
	return c.Continue(DefaultSessionName)
}

// Start replaces the session called name with a new one whose surface holds
// only prompt as the first user turn, and sends it. Replies still in flight
// for the replaced session are dropped when they arrive.
func (c *Controller) Start(name, prompt string) (tea.Cmd, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyConversation
	}

	var b *buffer.Buffer
	if old := c.sessions[name]; old != nil {
		b = old.Buffer
		b.Clear()
	}
	s := NewSession(name, b, c.provider, c.credentials, c.timeout)
	s.conversational = true
	c.sessions[name] = s

	s.Buffer.AppendQuiet(UserMarker)
	begin := s.Buffer.Len()
	end := s.Buffer.AppendQuiet(prompt)
	s.Buffer.TagRange(begin, end, RoleUser)
	s.Buffer.SetPoint(end)
	s.Buffer.AddEditHook(AnnotateUserEdit)

	config.DebugLog.Debug().Str("session", s.ID).Str("name", name).Msg("conversation started")

	return s.SendConversation([]Message{{Role: RoleUser, Content: prompt}})
}

// Continue rebuilds the conversation from the surface of the session called
// name and sends it.
func (c *Controller) Continue(name string) (tea.Cmd, error) {
	s := c.sessions[name]
	if s == nil || !s.conversational {
		return nil, ErrNoConversation
	}
	if s.Pending() {
		return nil, ErrRequestInFlight
	}

	messages := SplitByRole(s.Buffer)
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}
	return s.SendConversation(messages)
}

func (c *Controller) sessionByID(id string) *Session {
	for _, s := range c.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// HandleMsg applies ResponseMsg and ResponseErrorMsg to the session that sent
// the request. handled is false for any other message. A failed request is
// returned as err after the session has been cleared for the next send.
func (c *Controller) HandleMsg(msg tea.Msg) (handled bool, err error) {
	switch msg := msg.(type) {
	case ResponseMsg:
		s := c.sessionByID(msg.SessionID)
		if s == nil {
			config.DebugLog.Debug().Str("session", msg.SessionID).Msg("dropping reply for replaced session")
			return true, ErrStaleResponse
		}
		return true, s.ApplyResponse(msg)

	case ResponseErrorMsg:
		s := c.sessionByID(msg.SessionID)
		if s == nil {
			return true, ErrStaleResponse
		}
		if err := s.ApplyError(msg); err != nil {
			return true, err
		}
		return true, fmt.Errorf("request failed: %w", msg.Err)
	}
	return false, nil
}
