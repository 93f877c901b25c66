package tap

import "strings"

// toolCallBuffer accumulates one index-addressed tool call across deltas.
// A buffer is declared by the first fragment that carries a non-empty ID;
// until then it is a placeholder created by slice growth.
type toolCallBuffer struct {
	id       string
	typ      string
	name     string
	args     strings.Builder
	declared bool
}

// applyToolCall folds one tool call fragment into its index buffer. The
// buffer list grows with placeholders to reach the addressed index and
// never shrinks. ID and type are set once by the declaring fragment;
// argument text always appends. Fragments that address an undeclared
// buffer without declaring it have nowhere to go and are dropped.
func (s *State) applyToolCall(tc ToolCallDelta) {
	if tc.Index < 0 {
		return
	}
	for len(s.toolCalls) <= tc.Index {
		s.toolCalls = append(s.toolCalls, &toolCallBuffer{})
	}
	buf := s.toolCalls[tc.Index]
	if tc.ID != "" && !buf.declared {
		buf.declared = true
		buf.id = tc.ID
		buf.typ = tc.Type
		if buf.typ == "" {
			buf.typ = "function"
		}
	}
	if !buf.declared {
		return
	}
	if tc.Name != "" && buf.name == "" {
		buf.name = tc.Name
	}
	if tc.Arguments != "" {
		buf.args.WriteString(tc.Arguments)
	}
}

// Calls returns the assembled tool calls in index order. Placeholder slots
// that never received a declaring fragment are dropped.
func (s *State) Calls() []ToolCall {
	if len(s.toolCalls) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(s.toolCalls))
	for _, buf := range s.toolCalls {
		if !buf.declared {
			continue
		}
		out = append(out, ToolCall{
			ID:        buf.id,
			Type:      buf.typ,
			Name:      buf.name,
			Arguments: buf.args.String(),
		})
	}
	return out
}
