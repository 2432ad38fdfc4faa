package gateway

import (
	"fmt"
	"strings"
)

const timestampPrompt = "Please create time-stamps for the video and make sure its in the format of 00:00 - title. Provide clear, descriptive titles for each section."

const chatPromptTemplate = `You are a helpful video analysis assistant. Analyze the video content and provide a clear, well-formatted response.

IMPORTANT FORMATTING RULES:
- Write naturally with clear paragraphs
- When referencing specific moments, use exact timestamps like "At 2:34" or "Around 1:23:45"
- Use **bold text** for important points
- Use bullet points with standard format: "* Point one" or "- Point one"
- Write conversationally - timestamps will automatically become clickable
- Do NOT use any special link formatting - just write timestamps normally in text

RESPONSE GUIDELINES:
1. Be helpful and conversational
2. Include specific timestamps when relevant (MM:SS or HH:MM:SS format)
3. Describe visual elements clearly when asked
4. Provide structured information when helpful
5. Reference specific moments with natural language like "At 2:34, you can see..." or "The key point at 1:23 shows..."
6. Be concise and to the point. Do not overwhelm the user with too much information unless they ask for it.

Previous conversation:
%s
%s
User question: %s

Provide a helpful response with natural language and relevant timestamps.`

// ContextMessage is one prior conversation turn forwarded by the caller.
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildChatPrompt assembles the chat prompt from the fixed instruction
// block, a bounded history window, a bounded timestamp list, and the
// user's message. Pure string assembly, no network involved.
func buildChatPrompt(message string, context []ContextMessage, knownTimestamps []string, historyWindow, timestampLimit int) string {
	if len(context) > historyWindow {
		context = context[len(context)-historyWindow:]
	}
	var history strings.Builder
	for _, msg := range context {
		speaker := "Assistant"
		if msg.Role == "user" {
			speaker = "User"
		}
		fmt.Fprintf(&history, "%s: %s\n", speaker, msg.Content)
	}

	timestampContext := ""
	if len(knownTimestamps) > 0 {
		if len(knownTimestamps) > timestampLimit {
			knownTimestamps = knownTimestamps[:timestampLimit]
		}
		timestampContext = "\nExisting video timestamps:\n" + strings.Join(knownTimestamps, "\n") + "\n"
	}

	return fmt.Sprintf(chatPromptTemplate, history.String(), timestampContext, message)
}
