package respond

import (
	"time"

	"GrainHero/internal/modules/alert/domain/entity"
)

type NotificationItem struct {
	Id          string     `json:"id"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	EntityType  string     `json:"entity_type"`
	EntityId    string     `json:"entity_id"`
	BatchId     *string    `json:"batch_id,omitempty"`
	SiloId      *string    `json:"silo_id,omitempty"`
	ActionUrl   string     `json:"action_url,omitempty"`
	Occurrences int        `json:"occurrences"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	LastEventAt time.Time  `json:"last_event_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewNotificationItem(n *entity.Notification) NotificationItem {
	return NotificationItem{
		Id:          n.Id,
		Category:    n.Category,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		EntityType:  n.EntityType,
		EntityId:    n.EntityId,
		BatchId:     n.BatchId,
		SiloId:      n.SiloId,
		ActionUrl:   n.ActionUrl,
		Occurrences: n.Occurrences,
		Read:        n.IsRead,
		ReadAt:      n.ReadAt,
		LastEventAt: n.LastEventAt,
		CreatedAt:   n.CreatedAt,
	}
}

type NotificationListRespond struct {
	Items    []NotificationItem `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

type UnreadCountRespond struct {
	Unread int64 `json:"unread"`
}

// PushPayload is the body delivered to live inbox connections.
type PushPayload struct {
	Type         string           `json:"type"`
	Notification NotificationItem `json:"notification"`
}
