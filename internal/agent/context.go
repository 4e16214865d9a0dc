package agent

import (
	"github.com/chris/tablemate/internal/llm"
	"github.com/chris/tablemate/internal/tools"
)

// minMessageBudget leaves room for at least the current turn.
const minMessageBudget = 1000

// contextView returns the part of history that is sent to the model. With no
// budget the full history goes out.
func (a *Agent) contextView(history []llm.Message, schemas []tools.Schema) []llm.Message {
	if a.contextBudget <= 0 {
		return history
	}
	trimmed := llm.TrimMessages(history, a.messageBudget(schemas))
	if len(trimmed) < len(history) {
		a.logger.Info("context trimmed", "from", len(history), "to", len(trimmed))
	}
	return trimmed
}

// messageBudget is what remains of the context budget after the fixed costs
// of the system prompt and tool definitions.
func (a *Agent) messageBudget(schemas []tools.Schema) int {
	toolDefs := make([]llm.Tool, len(schemas))
	for i, s := range schemas {
		toolDefs[i] = s.Tool()
	}
	fixed := llm.EstimateRequestTokens(llm.Request{System: a.systemPrompt, Tools: toolDefs})
	budget := a.contextBudget - fixed
	if budget < minMessageBudget {
		budget = minMessageBudget
	}
	return budget
}
