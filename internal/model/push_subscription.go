package model

import "time"

// PushSubscription holds the information for a browser push subscription
// belonging to a dispatch operator. Services lists which emergency
// services the operator wants alerts for, comma separated; empty means
// all of them.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Services  string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"not null"`
}
