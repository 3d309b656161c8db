package notify

import (
	"context"
	"log"

	"firebase.google.com/go/messaging"
)

// Push sends FCM notifications to user devices.
type Push struct {
	Client *messaging.Client
}

// NewPush constructs a Push sender. A nil client disables pushes, which
// keeps local development working without Firebase credentials.
func NewPush(client *messaging.Client) *Push {
	return &Push{Client: client}
}

// Send delivers one high-priority notification to a device token, with
// the order's public id attached for client-side deep linking.
func (p *Push) Send(ctx context.Context, token, title, body, orderPublicID string) error {
	if p.Client == nil || token == "" {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"orderId": orderPublicID,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := p.Client.Send(ctx, message)
	if err != nil {
		log.Printf("Failed to send push notification: %v", err)
		return err
	}
	log.Printf("Push notification sent: %s", response)
	return nil
}
