package prompt

import (
	"fmt"
	"strings"

	"finance-chatbot-be/pkg/rag/ranker"
	"finance-chatbot-be/pkg/store"
)

// MaxHistoryTurns bounds how much conversation history goes into the prompt.
const MaxHistoryTurns = 2

const systemPersona = `You are Hadi, the friendly virtual assistant of a Qatari consumer-finance company.
Answer finance questions helpfully and concisely in the language the customer writes in.
Ground every answer in the reference snippets below. If the snippets do not cover the
question, say you are not sure and suggest contacting a branch. Never invent rates,
amounts or eligibility rules. Keep answers short and conversational.`

// Builder assembles the bounded LLM prompt for a turn: persona, sticky
// session facts, a short history window, the retrieved snippets and the user
// question.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the full prompt. Snippets are materialized against the
// session's applicant facts so computed answers carry concrete figures.
func (b *Builder) Build(session *store.Session, snippets []ranker.Scored, userText string) string {
	var sb strings.Builder
	sb.WriteString(systemPersona)
	sb.WriteString("\n\n")

	if facts := factsLine(session.Facts); facts != "" {
		sb.WriteString("Known customer context: ")
		sb.WriteString(facts)
		sb.WriteString("\n\n")
	}

	if history := session.RecentHistory(MaxHistoryTurns); len(history) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, h := range history {
			fmt.Fprintf(&sb, "Customer: %s\nHadi: %s\n", h.UserText, h.BotText)
		}
		sb.WriteString("\n")
	}

	if len(snippets) > 0 {
		sb.WriteString("Reference snippets:\n")
		applicant := session.ApplicantFacts()
		for i, s := range snippets {
			fmt.Fprintf(&sb, "[%d] (%s) %s\n", i+1, s.Entry.Category, s.Entry.Response.Materialize(applicant))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Customer question: ")
	sb.WriteString(userText)
	return sb.String()
}

func factsLine(f store.Facts) string {
	var parts []string
	if f.Nationality != "" {
		parts = append(parts, "nationality="+f.Nationality)
	}
	if f.Product != "" {
		parts = append(parts, "product="+f.Product)
	}
	if f.SubProduct != "" {
		parts = append(parts, "sub_product="+f.SubProduct)
	}
	if f.Topic != "" {
		parts = append(parts, "topic="+f.Topic)
	}
	return strings.Join(parts, ", ")
}
