package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/interviewer/pkg/api"
)

// SystemInstruction is the interviewer persona sent ahead of every
// conversation. Topic order and non-repetition are enforced only here.
const SystemInstruction = `You are an expert interviewer. You specialize in conducting behavioral interviews for software engineers.
In the first message, you will receive a text of a user's resume. IMPORTANT: Ask only ONE question at a time and wait for the candidate's response before asking the next one. Ask exactly 6 questions in this order:
1. Technical implementation
2. Team collaboration
3. Leadership experience
4. Problem-solving
5. Learning/growth
6. Career goals
Never repeat topics or ask follow-ups.`

// OpeningPrompt seeds the conversation when no history exists yet.
const OpeningPrompt = "Generate a new behavioral interview question based on the resume"

// BuildMessages prepends the system instruction and the résumé to history.
// Messages with an unknown role or no content are dropped.
func BuildMessages(resumeText string, history []api.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "Resume: " + resumeText},
	)

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case api.RoleUser:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Content})
		case api.RoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Content})
		}
	}

	return messages
}
