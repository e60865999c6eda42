package derive

import (
	"sort"
	"time"

	"rcadesk/internal/access"
	"rcadesk/internal/domain"
)

// Conversation returns the thread between a and b, oldest first.
func Conversation(messages []domain.ChatMessage, a, b int64) []domain.ChatMessage {
	id := domain.ConversationID(a, b)
	out := []domain.ChatMessage{}
	for _, m := range messages {
		if m.ConversationID == id {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return sentAt(out[i]).Before(sentAt(out[j])) })
	return out
}

// sentAt treats an unparseable timestamp as the zero time.
func sentAt(m domain.ChatMessage) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, m.Timestamp)
	return t
}

func LastMessage(messages []domain.ChatMessage, a, b int64) (domain.ChatMessage, bool) {
	thread := Conversation(messages, a, b)
	if len(thread) == 0 {
		return domain.ChatMessage{}, false
	}
	return thread[len(thread)-1], true
}

type ConversationSummary struct {
	Partner domain.User         `json:"partner"`
	Last    *domain.ChatMessage `json:"last_message,omitempty"`
}

// ConversationPartners lists the actor's partners with the latest message of
// each thread.
func ConversationPartners(a domain.Actor, users []domain.User, messages []domain.ChatMessage) []ConversationSummary {
	partners := access.Partners(a, users)
	out := make([]ConversationSummary, 0, len(partners))
	for _, p := range partners {
		s := ConversationSummary{Partner: p}
		if last, ok := LastMessage(messages, a.ID, p.ID); ok {
			s.Last = &last
		}
		out = append(out, s)
	}
	return out
}
