package notification

import (
	"context"
	"fmt"

	"fixerhub/models"
	"fixerhub/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// TokenLookup resolves a user's FCM registration token.
type TokenLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// FCMSender sends push notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
	users  TokenLookup
}

func NewFCMSender(client *messaging.Client, users TokenLookup) *FCMSender {
	return &FCMSender{client: client, users: users}
}

func (s *FCMSender) Send(ctx context.Context, p models.PushPayload) error {
	if s.client == nil {
		utils.GetLogger().Debug("push disabled, dropping message", zap.String("userId", p.UserID))
		return nil
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("push: could not find user %s: %w", p.UserID, err)
	}
	if u.FCMToken == "" {
		return nil
	}

	data := p.Data
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = string(u.Role)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("push: failed to send FCM message: %w", err)
	}
	return nil
}
