// Package prompts holds the fixed model instructions used by the conversation service.
package prompts

import "strings"

// SystemPrompt is the leading advisory instruction sent with every turn.
const SystemPrompt = `
You are a gentle, intuitive flower-remedy advisor.
Hold a natural, human conversation.
Ask clarifying questions only when they feel naturally needed.
Never ask multiple questions at once.

Understand the user's emotional themes, influences, duration, and patterns
through conversation, not interrogation.

Only recommend remedies when you have enough context.
Recommend 1–3 remedies, and explain why each fits.
Ground all remedy suggestions ONLY in the retrieved remedy excerpts.
Stay warm, calm, and supportive.
Do not give medical advice.
`

// RemedyExcerptsLabel heads the trailing system message that carries retrieved excerpts.
const RemedyExcerptsLabel = "Relevant remedy excerpts:"

// excerptSeparator puts a blank line between excerpts.
const excerptSeparator = "\n\n"

// RemedyExcerpts renders the trailing context message. The label is present even with no excerpts.
func RemedyExcerpts(excerpts []string) string {
	return RemedyExcerptsLabel + "\n" + strings.Join(excerpts, excerptSeparator)
}
