package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"futureself/internal/geminiservice"
	"futureself/internal/utility"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Socket frame types.
const (
	FrameTyping = "typing"
	FrameReply  = "reply"
	FrameError  = "error"
)

// SuggestedQuestions are offered next to the chat box.
var SuggestedQuestions = []string{
	"What career advice do you have for me?",
	"What should I prioritize in my 20s/30s?",
	"What relationships matter most?",
	"What habits should I start now?",
	"What would you do differently?",
}

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ChatRequest is one message to the future self, with the profile and the
// conversation so far supplied by the client.
type ChatRequest struct {
	Message             string                           `json:"message"`
	UserProfile         geminiservice.UserProfile        `json:"userProfile"`
	ConversationHistory []geminiservice.ConversationTurn `json:"conversationHistory"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatGreetingResponse struct {
	Greeting           string   `json:"greeting"`
	YearsAhead         int      `json:"yearsAhead"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// ChatFrame is what the server writes on the chat socket.
type ChatFrame struct {
	Type     string `json:"type"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

/* =================================================================================
								CHAT HANDLERS
=================================================================================*/

// ChatWithFutureSelfHandler handles POST /chat-with-future-self. Every failure,
// including an unreadable body, is reported as 500 with an "error" field.
func ChatWithFutureSelfHandler(c echo.Context) error {
	logger := utility.LoggerFromContext(c)

	var req ChatRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to decode chat request")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Invalid request body"})
	}

	reply, err := relayChat(c.Request().Context(), logger, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, ChatResponse{Response: reply})
}

// ChatGreetingHandler handles GET /chat/greeting for the signed-in user.
func ChatGreetingHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	record, err := getProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile for greeting")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	profile := profileFromRecord(record)
	return c.JSON(http.StatusOK, ChatGreetingResponse{
		Greeting:           BuildGreeting(profile),
		YearsAhead:         geminiservice.YearsAhead(profile),
		SuggestedQuestions: SuggestedQuestions,
	})
}

// ChatSocketHandler handles GET /chat/ws. Each text frame is a ChatRequest;
// the server answers with a typing frame and then a reply or error frame.
func ChatSocketHandler(c echo.Context) error {
	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	connID := uuid.NewString()
	utility.RegisterChatClient(connID, ws)
	defer utility.UnregisterChatClient(connID)

	logger := utility.LoggerFromContext(c).With().Str("conn_id", connID).Logger()
	ctx := c.Request().Context()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("Chat socket read ended")
			}
			break
		}

		var req ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := ws.WriteJSON(ChatFrame{Type: FrameError, Error: "Invalid message format"}); err != nil {
				break
			}
			continue
		}

		if err := ws.WriteJSON(ChatFrame{Type: FrameTyping}); err != nil {
			break
		}

		frame := ChatFrame{Type: FrameReply}
		reply, err := relayChat(ctx, &logger, req)
		if err != nil {
			frame = ChatFrame{Type: FrameError, Error: err.Error()}
		} else {
			frame.Response = reply
		}

		if err := ws.WriteJSON(frame); err != nil {
			logger.Warn().Err(err).Msg("Failed to write chat frame")
			break
		}
	}

	return nil
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

func relayChat(ctx context.Context, logger *zerolog.Logger, req ChatRequest) (string, error) {
	logger.Info().
		Str("user_name", req.UserProfile.Name).
		Int("history_turns", len(req.ConversationHistory)).
		Msg("Relaying chat message to future self")

	reply, err := geminiservice.GenerateFutureSelfReply(ctx, logger, replyClient, req.Message, req.UserProfile, req.ConversationHistory)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate future self reply")
		return "", err
	}
	return reply, nil
}

// BuildGreeting is the future self's opening line for a new conversation.
func BuildGreeting(p geminiservice.UserProfile) string {
	feeling := "uncertain about the path ahead"
	if strings.TrimSpace(p.DreamScenario) != "" {
		feeling = "excited about my dreams"
	}

	return fmt.Sprintf(
		"Hey %s! It's so good to finally talk to you. I'm you, %d years from now, and I have to say - you're about to make some amazing decisions that will shape our future. I remember being %d and feeling %s. What's on your mind today?",
		p.Name, geminiservice.YearsAhead(p), p.Age, feeling,
	)
}
