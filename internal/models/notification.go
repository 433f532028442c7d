package models

import "time"

type NotificationType string

const NotificationFollow NotificationType = "follow"

// Notification is delivered to RecipientID over the notifications socket.
type Notification struct {
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipientId"`
	ActorID     string           `json:"actorId"`
	ActorName   string           `json:"actorName,omitempty"`
	ActorPhoto  string           `json:"actorPhoto,omitempty"`
	Text        string           `json:"text"`
	CreatedAt   time.Time        `json:"createdAt"`
}
