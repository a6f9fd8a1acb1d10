package models

import "strings"

// ConversationSeparator joins the two participant ids. User ids must not contain it;
// Mongo ObjectID hex strings and UUIDs never do.
const ConversationSeparator = "_"

// ConversationID derives the thread key for a pair of users. The order of a and b does not matter.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ConversationSeparator + b
}

// Participants splits a conversation id back into its two user ids.
func Participants(conversationID string) (string, string, bool) {
	a, b, ok := strings.Cut(conversationID, ConversationSeparator)
	if !ok || a == "" || b == "" || strings.Contains(b, ConversationSeparator) {
		return "", "", false
	}
	return a, b, true
}
