package notification

import (
	"context"
	"fmt"

	"kinecare/utils"

	"firebase.google.com/go/v4/messaging"
)

// sendPush delivers one FCM push to the given device token.
func sendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	if utils.FCMClient == nil {
		return "", fmt.Errorf("push channel not configured")
	}
	if token == "" {
		return "", fmt.Errorf("recipient has no FCM token")
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "appointments",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := utils.FCMClient.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}
	return id, nil
}
