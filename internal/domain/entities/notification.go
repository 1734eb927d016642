package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNotificationTitle   = 120
	maxNotificationMessage = 1000
)

// BroadcastNotification is an admin message sent to every user
type BroadcastNotification struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	SenderID       uuid.UUID `json:"senderId"`
	RecipientCount int       `json:"recipientCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Notification is one inbox entry of a user
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	BroadcastID *uuid.UUID `json:"broadcastId,omitempty"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"isRead"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// BroadcastInput is the body of the send-notification call
type BroadcastInput struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Normalize trims the input and returns a client-facing reason when invalid
func (in *BroadcastInput) Normalize() (string, bool) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	switch {
	case in.Title == "" || in.Message == "":
		return "title and message are required", false
	case len(in.Title) > maxNotificationTitle:
		return "title must be at most 120 characters", false
	case len(in.Message) > maxNotificationMessage:
		return "message must be at most 1000 characters", false
	}
	return "", true
}

// BroadcastResult reports the durable write and the push dispatch separately
type BroadcastResult struct {
	Broadcast  *BroadcastNotification `json:"broadcast"`
	Count      int                    `json:"count"`
	PushSent   int                    `json:"pushSent"`
	PushFailed int                    `json:"pushFailed"`
	PushError  bool                   `json:"pushError"`
}

// MarkReadInput selects notifications to mark; empty means all
type MarkReadInput struct {
	IDs []uuid.UUID `json:"ids"`
}

// PushMessage is one device notification handed to the push gateway
type PushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushReport summarizes a dispatch
type PushReport struct {
	Sent   int
	Failed int
}
