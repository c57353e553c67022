package geminiservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// GenerateFutureSelfReply builds the conversation for one chat message, sends
// it to Gemini and returns the reply text. An empty model answer becomes
// ApologyReply; every other failure is returned to the caller.
func GenerateFutureSelfReply(
	ctx context.Context,
	log *zerolog.Logger,
	client *Client,
	message string,
	profile UserProfile,
	history []ConversationTurn,
) (string, error) {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	if strings.TrimSpace(message) == "" {
		log.Warn().Msg("Chat message is empty, forwarding as-is")
	}

	payload := NewChatPayload(BuildConversation(message, profile, history))

	text, err := client.GenerateContent(ctx, log, payload)
	if err != nil {
		if errors.Is(err, ErrNoCandidates) {
			log.Warn().Msg("Gemini returned no candidate text, using apology reply")
			return ApologyReply, nil
		}
		return "", err
	}

	return text, nil
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// ResolvedFutureAge is FutureAge when set, otherwise Age+10.
func (p UserProfile) ResolvedFutureAge() int {
	if p.FutureAge != nil {
		return *p.FutureAge
	}
	return p.Age + 10
}

// YearsAhead is the gap the persona speaks across. It is not clamped: an
// inconsistent profile yields zero or a negative number.
func YearsAhead(p UserProfile) int {
	return p.ResolvedFutureAge() - p.Age
}

// BuildInstruction renders InstructionTemplate for p.
func BuildInstruction(p UserProfile) string {
	return fmt.Sprintf(
		InstructionTemplate,
		orDefault(p.Name, DefaultName),
		YearsAhead(p),
		p.ResolvedFutureAge(),
		p.Age,
		orDefault(p.CurrentCareer, DefaultCareer),
		orDefault(p.Location, DefaultLocation),
		orDefault(p.RelationshipStatus, DefaultRelationshipStatus),
		orDefault(p.FinancialSituation, DefaultFinancialSituation),
		joinOrDefault(p.Goals, DefaultGoals),
		joinOrDefault(p.Values, DefaultValues),
		joinOrDefault(p.HealthPriorities, DefaultHealthPriorities),
		orDefault(p.DreamScenario, DefaultDreamScenario),
	)
}

// RecentHistory returns the last HistoryWindow turns, oldest first.
func RecentHistory(history []ConversationTurn) []ConversationTurn {
	if len(history) <= HistoryWindow {
		return history
	}
	return history[len(history)-HistoryWindow:]
}

// BuildConversation lays out the turns in their fixed order: instruction,
// primer acknowledgment, recent history, new message. History turns with an
// unknown role are dropped after windowing.
func BuildConversation(message string, p UserProfile, history []ConversationTurn) []GeminiContent {
	recent := RecentHistory(history)

	contents := make([]GeminiContent, 0, len(recent)+3)
	contents = append(contents,
		textContent(geminiRoleUser, BuildInstruction(p)),
		textContent(geminiRoleModel, PrimerAcknowledgment),
	)

	for _, turn := range recent {
		role, ok := geminiRole(turn.Role)
		if !ok {
			continue
		}
		contents = append(contents, textContent(role, turn.Content))
	}

	return append(contents, textContent(geminiRoleUser, message))
}

// NewChatPayload wraps contents with the fixed chat generation and safety settings.
func NewChatPayload(contents []GeminiContent) GeminiPayload {
	config := ChatGenerationConfig
	return GeminiPayload{
		Contents:         contents,
		GenerationConfig: &config,
		SafetySettings:   append([]SafetySetting(nil), ChatSafetySettings...),
	}
}

func geminiRole(role string) (string, bool) {
	switch role {
	case RoleUser:
		return geminiRoleUser, true
	case RoleFutureSelf:
		return geminiRoleModel, true
	}
	return "", false
}

func textContent(role, text string) GeminiContent {
	return GeminiContent{
		Role:  role,
		Parts: []GeminiPart{{Text: text}},
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func joinOrDefault(items []string, fallback string) string {
	return orDefault(strings.Join(items, ", "), fallback)
}
