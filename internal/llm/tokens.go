package llm

import (
	"encoding/json"
	"unicode/utf8"
)

// Estimates are provider-neutral and approximate. Latin text runs about four
// bytes per token; CJK and other multi-byte runes are closer to one token
// each, so they are counted separately.
const (
	asciiPerToken   = 4
	messageOverhead = 4
	callOverhead    = 4
	toolOverhead    = 10
)

// EstimateTokens approximates the token count of s.
func EstimateTokens(s string) int {
	ascii, wide := 0, 0
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			ascii++
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		wide++
		i += size
	}
	return (ascii+asciiPerToken-1)/asciiPerToken + wide
}

func EstimateMessageTokens(m Message) int {
	n := messageOverhead + EstimateTokens(m.Content) + EstimateTokens(m.ToolCallID)
	for _, tc := range m.ToolCalls {
		n += callOverhead + EstimateTokens(tc.ID) + EstimateTokens(tc.Name) + EstimateTokens(tc.Arguments)
	}
	return n
}

func EstimateMessagesTokens(messages []Message) int {
	n := 0
	for _, m := range messages {
		n += EstimateMessageTokens(m)
	}
	return n
}

// EstimateToolsTokens counts tool definitions as they are sent: name,
// description and the JSON schema of the parameters.
func EstimateToolsTokens(tools []Tool) int {
	n := 0
	for _, t := range tools {
		n += toolOverhead + EstimateTokens(t.Name) + EstimateTokens(t.Description)
		if schema, err := json.Marshal(t.Parameters); err == nil {
			n += EstimateTokens(string(schema))
		}
	}
	return n
}

// EstimateRequestTokens is the prompt size of req before any trimming.
func EstimateRequestTokens(req Request) int {
	return EstimateTokens(req.System) + EstimateToolsTokens(req.Tools) + EstimateMessagesTokens(req.Messages)
}
