package domain

import "time"

// PushSubscriber is one browser push subscription. The endpoint is the
// natural unique key: re-subscribing from the same endpoint updates the
// existing record instead of creating a duplicate.
type PushSubscriber struct {
	Endpoint   string    `json:"endpoint" dynamodbav:"endpoint"`
	P256dh     string    `json:"p256dh" dynamodbav:"p256dh"`
	Auth       string    `json:"auth" dynamodbav:"auth"`
	OwnerEmail string    `json:"owner_email" dynamodbav:"owner_email"`
	LastUsedAt time.Time `json:"last_used_at" dynamodbav:"last_used_at"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

// SubscribeRequest mirrors the browser PushSubscription JSON shape.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
	OwnerEmail string `json:"owner_email" validate:"required,email"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}
