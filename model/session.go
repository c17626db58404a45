package model

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"chatbuf/buffer"
	"chatbuf/config"
)

// Markers written between turns. They are inserted without firing edit hooks
// and stay untagged, so they never reach the endpoint.
const (
	Separator       = "\n\n"
	UserMarker      = "> User\n"
	AssistantMarker = "> Assistant\n"
)

// Session owns one conversation surface and the single request that may be
// outstanding for it.
type Session struct {
	ID     string
	Name   string
	Buffer *buffer.Buffer

	provider       Provider
	credentials    CredentialSource
	timeout        time.Duration
	conversational bool
	pendingID      string
}

// NewSession returns an empty session with a fresh ID. A zero timeout lets
// requests run until the provider gives up.
func NewSession(name string, b *buffer.Buffer, p Provider, creds CredentialSource, timeout time.Duration) *Session {
	if b == nil {
		b = buffer.New()
	}
	return &Session{
		ID:          uuid.NewString(),
		Name:        name,
		Buffer:      b,
		provider:    p,
		credentials: creds,
		timeout:     timeout,
	}
}

// InConversation reports whether the surface was set up by Start.
func (s *Session) InConversation() bool {
	return s.conversational
}

// Pending reports whether a reply is outstanding.
func (s *Session) Pending() bool {
	return s.pendingID != ""
}

// SendConversation sends messages to the provider. The API key is looked up
// before anything leaves the process; a lookup failure is returned as is and
// no request is made. The returned command yields a ResponseMsg or a
// ResponseErrorMsg for this session.
func (s *Session) SendConversation(messages []Message) (tea.Cmd, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}
	if s.pendingID != "" {
		return nil, ErrRequestInFlight
	}

	req := ChatRequest{
		Model:    s.provider.GetModel(),
		Messages: slices.Clone(messages),
	}
	if s.provider.RequiresAPIKey() {
		if s.credentials == nil {
			return nil, fmt.Errorf("%s requires an API key but no credential store is configured", s.provider.Name())
		}
		key, err := s.credentials.Lookup(s.provider.Name())
		if err != nil {
			return nil, err
		}
		req.APIKey = key
	}

	requestID := uuid.NewString()
	s.pendingID = requestID
	sessionID := s.ID
	p := s.provider
	timeout := s.timeout

	config.DebugLog.Debug().
		Str("session", sessionID).
		Str("request", requestID).
		Str("provider", p.Name()).
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("sending conversation")

	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		content, err := p.Complete(ctx, req)
		elapsed := time.Since(start)
		if err != nil {
			config.DebugLog.Debug().Str("session", sessionID).Str("request", requestID).
				Dur("elapsed", elapsed).Err(err).Msg("request failed")
			return ResponseErrorMsg{SessionID: sessionID, RequestID: requestID, Err: err}
		}

		config.DebugLog.Debug().Str("session", sessionID).Str("request", requestID).
			Dur("elapsed", elapsed).Int("chars", len(content)).Msg("reply received")
		return ResponseMsg{SessionID: sessionID, RequestID: requestID, Content: content}
	}, nil
}

func (s *Session) owns(sessionID, requestID string) bool {
	return sessionID == s.ID && s.pendingID != "" && requestID == s.pendingID
}

// ApplyResponse appends the reply as an assistant turn followed by the marker
// for the next user turn and an empty user span for it. Nothing appended here
// goes through the edit hooks.
func (s *Session) ApplyResponse(msg ResponseMsg) error {
	if !s.owns(msg.SessionID, msg.RequestID) {
		return ErrStaleResponse
	}
	s.pendingID = ""

	b := s.Buffer
	b.AppendQuiet(Separator)
	b.AppendQuiet(AssistantMarker)
	begin := b.Len()
	end := b.AppendQuiet(msg.Content)
	if end > begin {
		b.TagRange(begin, end, RoleAssistant)
	}
	b.AppendQuiet(Separator)
	b.AppendQuiet(UserMarker)
	b.TagRange(b.Len(), b.Len(), RoleUser)
	b.SetPoint(b.Len())
	return nil
}

// ApplyError clears the outstanding request. The surface is not touched, so
// the user can add a turn and continue.
func (s *Session) ApplyError(msg ResponseErrorMsg) error {
	if !s.owns(msg.SessionID, msg.RequestID) {
		return ErrStaleResponse
	}
	s.pendingID = ""
	return nil
}

// Type inserts text at the point as if the user typed it.
func (s *Session) Type(text string) {
	s.Buffer.Insert(s.Buffer.Point(), text)
}

// LastAssistantReply returns the text of the newest assistant turn.
func (s *Session) LastAssistantReply() (string, bool) {
	for span := range s.Buffer.SpansBackward() {
		if span.Role == RoleAssistant && span.Len() > 0 {
			return s.Buffer.Substring(span.Begin, span.End), true
		}
	}
	return "", false
}

// AnnotateUserEdit is the edit hook installed on conversation surfaces: text
// the user edits becomes part of a user turn unless it touches an assistant
// turn.
func AnnotateUserEdit(b *buffer.Buffer, begin, end int) {
	if begin == end || b.OverlapsRole(begin, end, RoleAssistant) {
		return
	}
	b.TagRange(begin, end, RoleUser)
}
