package models

import "time"

// SubscriberModel is an email subscriber.
//
// Token is generated once at creation and never rotated. It is the sole
// bearer credential for both the verify and the unsubscribe links.
type SubscriberModel struct {
	Base
	Email      string     `json:"email"  gorm:"uniqueIndex;not null"`
	Token      string     `json:"-"      gorm:"uniqueIndex;not null"`
	Active     bool       `json:"active" gorm:"default:false;index"`
	VerifiedAt *time.Time `json:"verified_at"`
}

func (SubscriberModel) TableName() string { return "subscribers" }

// Notification delivery outcomes.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationLogModel is the per-(post, subscriber) delivery ledger. The
// unique index on the pair is the idempotency guard: a row in any status
// means "attempted, do not send again".
type NotificationLogModel struct {
	Base
	PostID       string           `json:"post_id"       gorm:"uniqueIndex:idx_post_subscriber;not null"`
	Post         *PostModel       `json:"-"             gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	SubscriberID string           `json:"subscriber_id" gorm:"uniqueIndex:idx_post_subscriber;not null"`
	Subscriber   *SubscriberModel `json:"-"             gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Status       string           `json:"status"        gorm:"not null"`
	Error        string           `json:"error"         gorm:"type:text"`
}

func (NotificationLogModel) TableName() string { return "notification_logs" }
