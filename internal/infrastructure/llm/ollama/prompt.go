package ollama

import (
	"fmt"
	"strings"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

const maxPromptSnippet = 4000

func buildTriplePrompt(text string) string {
	snippet := text
	if len(snippet) > maxPromptSnippet {
		snippet = snippet[:maxPromptSnippet]
	}

	return `Extract semantic knowledge triples (subject, predicate, object) from the text below.
Respond only with a JSON array of objects with keys "subject", "predicate", "object".
No markdown, no commentary, no extra keys.

Text:
` + snippet
}

func buildEntityPrompt(question string) string {
	return `List the named entities mentioned in the question below.
Respond only with a JSON array of strings. No markdown, no commentary.

Question:
` + question
}

func buildAnswerPrompt(question string, evidence []domain.RetrievalResult) string {
	var contextBuilder strings.Builder
	for idx, result := range evidence {
		contextBuilder.WriteString(fmt.Sprintf("[%d] origins=%s score=%.3f\n", idx+1, originLabel(result), result.Score))
		if result.Triple != nil {
			contextBuilder.WriteString(fmt.Sprintf("fact: (%s, %s, %s)\n",
				result.Triple.Subject, result.Triple.Predicate, result.Triple.Object))
		}
		if result.Text != "" {
			contextBuilder.WriteString(result.Text)
			contextBuilder.WriteByte('\n')
		}
		contextBuilder.WriteByte('\n')
	}

	return fmt.Sprintf(`Answer the user question only from the evidence below.
The evidence mixes text passages and graph facts. If it is insufficient, say so directly.

Question:
%s

Evidence:
%s
`, question, contextBuilder.String())
}

func originLabel(result domain.RetrievalResult) string {
	labels := make([]string, 0, len(result.Origins))
	for _, origin := range result.Origins {
		labels = append(labels, string(origin))
	}
	return strings.Join(labels, "+")
}
