package model_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbuf/buffer"
	"chatbuf/config"
	"chatbuf/model"
	"chatbuf/provider"
	"chatbuf/provider/testutil"
)

var testKeys = testutil.MockCredentials{"mock": "sk-mock", "openai": "sk-openai"}

func run(t *testing.T, c *model.Controller, cmd tea.Cmd) error {
	t.Helper()
	require.NotNil(t, cmd)
	handled, err := c.HandleMsg(cmd())
	require.True(t, handled)
	return err
}

func TestStartConversationHelloScenario(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model").Reply("Hi there")
	c := model.NewController(mock, testKeys, 0)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)

	s := c.Default()
	require.NotNil(t, s)
	assert.Equal(t, model.DefaultSessionName, s.Name)
	assert.True(t, s.InConversation())
	assert.True(t, s.Pending())
	assert.Equal(t, "> User\nHello", s.Buffer.Text())
	assert.Equal(t, []buffer.Span{{Role: buffer.RoleUser, Begin: 7, End: 12}}, s.Buffer.Spans())

	require.NoError(t, run(t, c, cmd))

	req := mock.LastRequest()
	assert.Equal(t, testutil.SingleUserMessage("Hello"), req.Messages)
	assert.Equal(t, "sk-mock", req.APIKey)
	assert.Equal(t, "mock-model", req.Model)

	assert.Equal(t, "> User\nHello\n\n> Assistant\nHi there\n\n> User\n", s.Buffer.Text())
	assert.Equal(t, []buffer.Span{
		{Role: buffer.RoleUser, Begin: 7, End: 12},
		{Role: buffer.RoleAssistant, Begin: 26, End: 34},
		{Role: buffer.RoleUser, Begin: 43, End: 43},
	}, s.Buffer.Spans())
	assert.Equal(t, s.Buffer.Len(), s.Buffer.Point())
	assert.False(t, s.Pending())

	assert.Equal(t, []model.Message{
		{Role: model.RoleUser, Content: "Hello"},
		{Role: model.RoleAssistant, Content: "Hi there"},
	}, model.SplitByRole(s.Buffer))

	reply, ok := s.LastAssistantReply()
	assert.True(t, ok)
	assert.Equal(t, "Hi there", reply)
}

func TestContinueConversationHowAreYouScenario(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model").Reply("Hi there")
	c := model.NewController(mock, testKeys, 0)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)
	require.NoError(t, run(t, c, cmd))

	s := c.Default()
	s.Type("How are you?")
	assert.Equal(t, []buffer.Span{
		{Role: buffer.RoleUser, Begin: 7, End: 12},
		{Role: buffer.RoleAssistant, Begin: 26, End: 34},
		{Role: buffer.RoleUser, Begin: 43, End: 55},
	}, s.Buffer.Spans())

	mock.Reply("Fine, thanks.")
	cmd, err = c.ContinueConversation()
	require.NoError(t, err)
	require.NoError(t, run(t, c, cmd))

	assert.Equal(t, testutil.TestMessages(), mock.LastRequest().Messages)
	assert.Equal(t, 2, mock.Calls())

	assert.Equal(t, []model.Message{
		{Role: model.RoleUser, Content: "Hello"},
		{Role: model.RoleAssistant, Content: "Hi there"},
		{Role: model.RoleUser, Content: "How are you?"},
		{Role: model.RoleAssistant, Content: "Fine, thanks."},
	}, model.SplitByRole(s.Buffer))
}

func TestContinueWithoutConversation(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model")
	c := model.NewController(mock, testKeys, 0)

	_, err := c.ContinueConversation()
	assert.ErrorIs(t, err, model.ErrNoConversation)

	_, err = c.Continue("*other*")
	assert.ErrorIs(t, err, model.ErrNoConversation)
	assert.Equal(t, 0, mock.Calls())
}

func TestContinueEmptyConversationMakesNoCall(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model").Reply("Hi there")
	c := model.NewController(mock, testKeys, 0)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)
	require.NoError(t, run(t, c, cmd))
	require.Equal(t, 1, mock.Calls())

	s := c.Default()
	s.Buffer.Delete(0, s.Buffer.Len())
	assert.Empty(t, model.SplitByRole(s.Buffer))

	cmd, err = c.ContinueConversation()
	assert.ErrorIs(t, err, model.ErrEmptyConversation)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, mock.Calls())
}

func TestStartRejectsBlankPrompt(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model")
	c := model.NewController(mock, testKeys, 0)

	_, err := c.StartConversation("  \n")
	assert.ErrorIs(t, err, model.ErrEmptyConversation)
	assert.Nil(t, c.Default())
}

func TestFailedRequestLeavesSurfaceIntact(t *testing.T) {
	boom := errors.New("connection reset")
	mock := testutil.NewMockProvider("mock-model").Fail(boom)
	c := model.NewController(mock, testKeys, 0)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)

	err = run(t, c, cmd)
	assert.ErrorIs(t, err, boom)

	s := c.Default()
	assert.Equal(t, "> User\nHello", s.Buffer.Text())
	assert.Equal(t, []buffer.Span{{Role: buffer.RoleUser, Begin: 7, End: 12}}, s.Buffer.Spans())
	assert.False(t, s.Pending())

	// the conversation resumes once the backend recovers
	mock.Reply("Hi there")
	s.Type("\nstill there?")
	cmd, err = c.ContinueConversation()
	require.NoError(t, err)
	require.NoError(t, run(t, c, cmd))
	assert.Equal(t, []model.Message{{Role: model.RoleUser, Content: "Hello\nstill there?"}}, mock.LastRequest().Messages)
}

func TestSecondSendWhileInFlightIsRejected(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model")
	c := model.NewController(mock, testKeys, 0)

	_, err := c.StartConversation("Hello")
	require.NoError(t, err)

	_, err = c.ContinueConversation()
	assert.ErrorIs(t, err, model.ErrRequestInFlight)

	_, err = c.Default().SendConversation(testutil.SingleUserMessage("again"))
	assert.ErrorIs(t, err, model.ErrRequestInFlight)
	assert.Equal(t, 0, mock.Calls())
}

func TestMissingCredentialMakesNoCall(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model")
	c := model.NewController(mock, testutil.MockCredentials{}, 0)

	cmd, err := c.StartConversation("Hello")
	assert.Nil(t, cmd)
	require.Error(t, err)

	var credErr *config.CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, "mock", credErr.Service)
	assert.Equal(t, 0, mock.Calls())
	assert.False(t, c.Default().Pending())
}

func TestKeylessProviderSkipsLookup(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model")
	mock.NeedsKey = false
	c := model.NewController(mock, nil, 0)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)
	require.NoError(t, run(t, c, cmd))
	assert.Empty(t, mock.LastRequest().APIKey)
}

func TestRestartDropsStaleReply(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model").Reply("late reply")
	c := model.NewController(mock, testKeys, 0)

	first, err := c.StartConversation("Hello")
	require.NoError(t, err)
	second, err := c.StartConversation("Start over")
	require.NoError(t, err)

	err = run(t, c, first)
	assert.ErrorIs(t, err, model.ErrStaleResponse)
	assert.Equal(t, "> User\nStart over", c.Default().Buffer.Text())

	require.NoError(t, run(t, c, second))
	assert.Equal(t, []model.Message{
		{Role: model.RoleUser, Content: "Start over"},
		{Role: model.RoleAssistant, Content: "late reply"},
	}, model.SplitByRole(c.Default().Buffer))
}

func TestNamedSessionsAreIndependent(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model").Reply("ok")
	c := model.NewController(mock, testKeys, 0)

	a, err := c.Start("a", "first")
	require.NoError(t, err)
	b, err := c.Start("b", "second")
	require.NoError(t, err)

	require.NoError(t, run(t, c, b))
	require.NoError(t, run(t, c, a))

	assert.Equal(t, "first", model.SplitByRole(c.Session("a").Buffer)[0].Content)
	assert.Equal(t, "second", model.SplitByRole(c.Session("b").Buffer)[0].Content)
	assert.Nil(t, c.Default())
}

func TestHandleMsgIgnoresOtherMessages(t *testing.T) {
	c := model.NewController(testutil.NewMockProvider("mock-model"), testKeys, 0)
	handled, err := c.HandleMsg(tea.KeyMsg{})
	assert.False(t, handled)
	assert.NoError(t, err)
}

func TestRequestTimeout(t *testing.T) {
	mock := testutil.NewMockProvider("mock-model")
	mock.CompleteFunc = func(ctx context.Context, req model.ChatRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	c := model.NewController(mock, testKeys, 10*time.Millisecond)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)
	err = run(t, c, cmd)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "> User\nHello", c.Default().Buffer.Text())
}

// A response body that is not JSON must surface as an error and leave the
// conversation exactly as it was.
func TestMalformedResponseBodyEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html><body>502 Bad Gateway</body></html>")
	}))
	defer srv.Close()

	c := model.NewController(provider.NewOpenAIProvider(srv.URL, ""), testKeys, 0)

	cmd, err := c.StartConversation("Hello")
	require.NoError(t, err)

	before := c.Default().Buffer.Text()
	spans := c.Default().Buffer.Spans()

	err = run(t, c, cmd)
	require.Error(t, err)
	assert.Equal(t, before, c.Default().Buffer.Text())
	assert.Equal(t, spans, c.Default().Buffer.Spans())
	assert.False(t, c.Default().Pending())
}
