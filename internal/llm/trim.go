package llm

// TrimMessages drops the oldest turns of history until it fits maxTokens.
//
// A turn opens with a user message and runs to the next one: the question,
// every tool round the model made for it, and the answer. System messages
// are never dropped; those from dropped turns move to the front in their
// original order. The latest turn is always kept. If it alone is over
// budget, its older tool rounds go, leaving the question and the newest
// round. An assistant tool call and its results are kept or dropped
// together.
func TrimMessages(messages []Message, maxTokens int) []Message {
	turns := splitTurns(messages)
	total := 0
	for _, t := range turns {
		total += t.tokens()
	}
	if total <= maxTokens {
		return messages
	}

	var pinned []Message
	first := 0
	for ; first < len(turns)-1 && total > maxTokens; first++ {
		for _, s := range turns[first] {
			if s.pinned {
				pinned = append(pinned, s.messages...)
			} else {
				total -= s.tokens
			}
		}
	}

	out := pinned
	for _, t := range turns[first : len(turns)-1] {
		out = t.appendTo(out)
	}
	last := turns[len(turns)-1]
	if total > maxTokens {
		last = last.shed(total - maxTokens)
	}
	return last.appendTo(out)
}

// segment is the smallest unit trimming handles: one message, or an
// assistant tool call together with its results.
type segment struct {
	messages []Message
	tokens   int
	pinned   bool
}

type turn []segment

func (t turn) tokens() int {
	n := 0
	for _, s := range t {
		n += s.tokens
	}
	return n
}

func (t turn) appendTo(out []Message) []Message {
	for _, s := range t {
		out = append(out, s.messages...)
	}
	return out
}

// shed drops middle rounds, oldest first, until excess tokens are gone or
// only the opening message and the newest round remain.
func (t turn) shed(excess int) turn {
	out := turn{t[0]}
	for i := 1; i < len(t)-1; i++ {
		s := t[i]
		if excess > 0 && !s.pinned {
			excess -= s.tokens
			continue
		}
		out = append(out, s)
	}
	if len(t) > 1 {
		out = append(out, t[len(t)-1])
	}
	return out
}

// splitTurns groups messages into turns. Anything before the first user
// message forms a turn of its own.
func splitTurns(messages []Message) []turn {
	var turns []turn
	for i := 0; i < len(messages); {
		m := messages[i]
		s := segment{messages: []Message{m}, pinned: m.Role == RoleSystem}
		i++
		if m.Role == RoleAssistant && len(m.ToolCalls) > 0 {
			for i < len(messages) && isToolResult(messages[i]) {
				s.messages = append(s.messages, messages[i])
				i++
			}
		}
		s.tokens = EstimateMessagesTokens(s.messages)

		if len(turns) == 0 || (m.Role == RoleUser && m.ToolCallID == "") {
			turns = append(turns, nil)
		}
		turns[len(turns)-1] = append(turns[len(turns)-1], s)
	}
	return turns
}

func isToolResult(m Message) bool {
	return m.Role == RoleTool || m.ToolCallID != ""
}
