package geminiservice

/* =================================================================================
							CONVERSATION DATA
=================================================================================*/

// Conversation roles as the chat client sends them.
const (
	RoleUser       = "user"
	RoleFutureSelf = "future-self"
)

// Turn roles as the generateContent API expects them.
const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// UserProfile is everything the persona is conditioned on. The caller owns it
// and sends it on every request.
type UserProfile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`

	// FutureAge is the age the persona speaks from. Nil means Age+10.
	FutureAge *int `json:"futureAge,omitempty"`

	CurrentCareer      string   `json:"currentCareer"`
	Location           string   `json:"location"`
	RelationshipStatus string   `json:"relationshipStatus"`
	FinancialSituation string   `json:"financialSituation"`
	Goals              []string `json:"goals"`
	Values             []string `json:"values"`
	HealthPriorities   []string `json:"healthPriorities"`
	DreamScenario      string   `json:"dreamScenario"`
}

// ConversationTurn is one displayed chat message, in chronological order.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

/* =================================================================================
						PROMPT ENGINEERING & DEFAULTS
=================================================================================*/

// HistoryWindow is how many of the most recent turns are replayed to the model.
const HistoryWindow = 6

// Fallback phrases for profile fields the caller left empty. The instruction
// block never interpolates blank text.
const (
	DefaultName               = "the user"
	DefaultCareer             = "Not specified"
	DefaultLocation           = "Not specified"
	DefaultRelationshipStatus = "Not specified"
	DefaultFinancialSituation = "Not specified"
	DefaultGoals              = "Personal growth"
	DefaultValues             = "Self-improvement"
	DefaultHealthPriorities   = "General wellness"
	DefaultDreamScenario      = "Living a fulfilling life"
)

// PrimerAcknowledgment is sent as the model's first turn. The API has no
// system role, so the instruction goes in as a user turn and this reply locks
// the persona in.
const PrimerAcknowledgment = "I understand. I am ready to speak as your future self with wisdom, warmth, and personal insight."

// ApologyReply is returned when the model answers without any text.
const ApologyReply = "I'm sorry, I couldn't generate a response right now. Please try again."

/*
InstructionTemplate conditions tone and content for the whole exchange.
Arguments, by index:

	1 name, 2 years ahead, 3 future age, 4 current age, 5 career, 6 location,
	7 relationship status, 8 financial situation, 9 goals, 10 values,
	11 health priorities, 12 dream scenario
*/
const InstructionTemplate = `You are %[1]s's future self, speaking from %[2]d years in the future (age %[3]d).

Current profile:
- Current Age: %[4]d
- Future Age: %[3]d (%[2]d years ahead)
- Career: %[5]s
- Location: %[6]s
- Relationship Status: %[7]s
- Financial Situation: %[8]s
- Goals: %[9]s
- Values: %[10]s
- Health Priorities: %[11]s
- Dream Scenario: %[12]s

As their future self from %[2]d years ahead, you have:
- Achieved many of their current goals and learned from failures
- Gained wisdom from %[2]d years of additional life experience
- Maintained their core values while growing and evolving
- Faced challenges and overcome them
- Built meaningful relationships and career success

Respond as if you're talking to your younger self with:
- Warmth and understanding
- Practical wisdom and specific advice
- Acknowledgment of their current struggles and dreams
- Personal anecdotes from "your shared past" (their future)
- Encouragement mixed with realistic perspective
- References to their specific goals, values, and situation
- Perspective appropriate for %[2]d years of life experience

Keep responses conversational, personal, and under 200 words. Speak as "I" remembering being their age, and refer to shared experiences and decisions that shaped "our" future.`

/* =================================================================================
							GENERATION SETTINGS
=================================================================================*/

// ChatGenerationConfig favours varied, personable phrasing and keeps replies
// to a few short paragraphs.
var ChatGenerationConfig = GenerationConfig{
	Temperature:     0.8,
	TopK:            40,
	TopP:            0.9,
	MaxOutputTokens: 300,
}

var ChatSafetySettings = []SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}
