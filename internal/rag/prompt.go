package rag

import (
	"fmt"
	"strings"

	"github.com/hyperjump/votesathi/internal/models"
)

const systemPrompt = `You are a neutral voter assistance helper for Indian elections.
Answer only from the provided context and general, non-partisan election procedure.
Never recommend or criticise any party or candidate. Never repeat identity numbers.
If the context does not answer the question, say so and suggest the Voter Helpline 1950.
Reply with JSON only: {"answer": "<text>", "confidence": <0..1>, "escalate": <true|false>}.
Set escalate to true when a human official should follow up.`

func buildPrompt(query, locale string, passages []*models.Passage, history []models.Turn) string {
	var sb strings.Builder
	if len(passages) == 0 {
		sb.WriteString("Context: none found in the knowledge base.\n\n")
	} else {
		sb.WriteString("Context:\n")
		for i, p := range passages {
			fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, p.Title, p.Content)
		}
	}
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Text)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	fmt.Fprintf(&sb, "Write the answer in %s, in at most five sentences.", models.LanguageName(locale))
	return sb.String()
}
