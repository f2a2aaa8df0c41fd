package entity

import "time"

// Message is immutable once created apart from ReadBy.
type Message struct {
	ID        string    `json:"id" firestore:"id"`
	AuthorID  string    `json:"author_id" firestore:"authorId"`
	Nickname  string    `json:"nickname" firestore:"nickname"` // snapshot at send time
	Content   string    `json:"content" firestore:"content"`
	ProductID string    `json:"product_id,omitempty" firestore:"productId"` // empty for the global room
	ReadBy    []string  `json:"read_by" firestore:"readBy"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (m *Message) IsReadBy(userID string) bool {
	for _, reader := range m.ReadBy {
		if reader == userID {
			return true
		}
	}
	return false
}

// ReadByOthers reports whether anyone besides the author has read the message.
func (m *Message) ReadByOthers() bool {
	for _, reader := range m.ReadBy {
		if reader != m.AuthorID {
			return true
		}
	}
	return false
}
