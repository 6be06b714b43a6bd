package domain

import (
	"strings"
	"time"
)

// Notification is one inbox entry surfaced in the header unread badge.
type Notification struct {
	ID        string
	TaskID    string
	Title     string
	Body      string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// NewNotification constructs an unread notification.
func NewNotification(id, taskID, title, body string, now time.Time) (Notification, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Notification{}, ErrInvalidID
	}
	if title == "" {
		return Notification{}, ErrInvalidTitle
	}
	return Notification{
		ID:        id,
		TaskID:    strings.TrimSpace(taskID),
		Title:     title,
		Body:      strings.TrimSpace(body),
		CreatedAt: now.UTC(),
	}, nil
}

// Unread reports whether the notification has not been read yet.
func (n Notification) Unread() bool {
	return n.ReadAt == nil
}

// MarkRead is idempotent; the first read time wins.
func (n *Notification) MarkRead(now time.Time) {
	if n.ReadAt != nil {
		return
	}
	ts := now.UTC()
	n.ReadAt = &ts
}
