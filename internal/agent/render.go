package agent

import (
	"fmt"
	"strings"

	"github.com/supplyhub/scm-assistant/internal/retrieval"
)

const answerTemplate = `Answer:
%s

Sources:
%s

Confidence: %.2f
Domain: %s
`

func formatSources(sources []retrieval.Citation) string {
	if len(sources) == 0 {
		return "None"
	}
	lines := make([]string, len(sources))
	for i, s := range sources {
		lines[i] = fmt.Sprintf("- %s (score=%.3f)", s.Source, s.Score)
	}
	return strings.Join(lines, "\n")
}

func render(answer string, sources []retrieval.Citation, confidence float64, domain string) string {
	return fmt.Sprintf(answerTemplate, answer, formatSources(sources), confidence, domain)
}
