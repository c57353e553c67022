package user

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"futureself/internal/geminiservice"
	"futureself/internal/utility"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatBody = `{
	"message": "Should I take the job in Berlin?",
	"userProfile": {"name": "Alex", "age": 28, "goals": ["Start a company"]},
	"conversationHistory": [
		{"role": "user", "content": "Hi"},
		{"role": "future-self", "content": "Hello, younger me."}
	]
}`

// fakeGemini answers generateContent calls with a fixed status and body and
// records the last payload it saw.
func fakeGemini(t *testing.T, status int, body string) (*httptest.Server, *geminiservice.GeminiPayload) {
	t.Helper()
	var got geminiservice.GeminiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func replyBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}]}}]}`
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestChatWithFutureSelfHandler_RelaysReply(t *testing.T) {
	srv, got := fakeGemini(t, http.StatusOK, replyBody("Take it, and learn German early."))
	setup(t, srv.URL)

	c, rec := newContext(http.MethodPost, "/chat-with-future-self", chatBody, "")
	require.NoError(t, ChatWithFutureSelfHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Take it, and learn German early.", decode[ChatResponse](t, rec).Response)

	// Instruction, acknowledgment, two history turns and the new message.
	require.Len(t, got.Contents, 5)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "You are Alex's future self")
	assert.Equal(t, "model", got.Contents[3].Role)
	assert.Equal(t, "Should I take the job in Berlin?", got.Contents[4].Parts[0].Text)
}

func TestChatWithFutureSelfHandler_Failures(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		upstream   string
		body       string
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{"upstream error", http.StatusServiceUnavailable, `{"error":"overloaded"}`, chatBody, http.StatusInternalServerError, "error", "Gemini API error: 503"},
		{"unreadable body", http.StatusOK, replyBody("unused"), `{"message":`, http.StatusInternalServerError, "error", "Invalid request body"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, chatBody, http.StatusOK, "response", geminiservice.ApologyReply},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := fakeGemini(t, tc.status, tc.upstream)
			setup(t, srv.URL)

			c, rec := newContext(http.MethodPost, "/chat-with-future-self", tc.body, "")
			require.NoError(t, ChatWithFutureSelfHandler(c))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantValue, decode[map[string]string](t, rec)[tc.wantField])
		})
	}
}

func TestChatGreetingHandler(t *testing.T) {
	fq := setup(t, "")

	c, rec := newContext(http.MethodGet, "/chat/greeting", "", testUserID)
	require.NoError(t, ChatGreetingHandler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	seedProfile(t, fq, "Alex", 28)
	c, rec = newContext(http.MethodGet, "/chat/greeting", "", testUserID)
	require.NoError(t, ChatGreetingHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ChatGreetingResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.Greeting, "Hey Alex!"))
	assert.Contains(t, resp.Greeting, "10 years from now")
	assert.Contains(t, resp.Greeting, "I remember being 28 and feeling excited about my dreams.")
	assert.Equal(t, 10, resp.YearsAhead)
	assert.Equal(t, SuggestedQuestions, resp.SuggestedQuestions)
}

func TestBuildGreeting_WithoutDream(t *testing.T) {
	futureAge := 50
	greeting := BuildGreeting(geminiservice.UserProfile{Name: "Sam", Age: 35, FutureAge: &futureAge})
	assert.Contains(t, greeting, "15 years from now")
	assert.Contains(t, greeting, "feeling uncertain about the path ahead")
}

func dialChatSocket(t *testing.T) *websocket.Conn {
	t.Helper()
	e := echo.New()
	e.GET("/chat/ws", ChatSocketHandler)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/chat/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) ChatFrame {
	t.Helper()
	var frame ChatFrame
	require.NoError(t, ws.ReadJSON(&frame))
	return frame
}

func TestChatSocketHandler_TypingThenReply(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, replyBody("Trust yourself."))
	setup(t, srv.URL)
	ws := dialChatSocket(t)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(chatBody)))
	assert.Equal(t, ChatFrame{Type: FrameTyping}, readFrame(t, ws))
	assert.Equal(t, ChatFrame{Type: FrameReply, Response: "Trust yourself."}, readFrame(t, ws))

	// The socket stays open for the next message.
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(chatBody)))
	assert.Equal(t, FrameTyping, readFrame(t, ws).Type)
	assert.Equal(t, FrameReply, readFrame(t, ws).Type)
	assert.GreaterOrEqual(t, utility.ActiveChatClients(), 1)
}

func TestChatSocketHandler_Errors(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusInternalServerError, `{}`)
	setup(t, srv.URL)
	ws := dialChatSocket(t)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	assert.Equal(t, ChatFrame{Type: FrameError, Error: "Invalid message format"}, readFrame(t, ws))

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(chatBody)))
	assert.Equal(t, FrameTyping, readFrame(t, ws).Type)
	assert.Equal(t, ChatFrame{Type: FrameError, Error: "Gemini API error: 500"}, readFrame(t, ws))
}
