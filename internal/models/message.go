package models

import "time"

// Message is a single two-party message. A conversation is implicitly the
// unordered {Sender, Receiver} pair; there is no conversation entity on the
// wire.
type Message struct {
	ID         string    `json:"id"`
	SenderID   int64     `json:"sender"`
	ReceiverID int64     `json:"receiver"`
	Body       string    `json:"body"`
	Attachment string    `json:"attachment,omitempty"`
	Read       bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Between reports whether the message belongs to the conversation between a
// and b, in either direction.
func (m Message) Between(a, b int64) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Contact is an entry in the role-scoped contact list (the accounts this user
// may message: its parent, or its downline).
type Contact struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	Unread      int    `json:"unread_count"`
}
