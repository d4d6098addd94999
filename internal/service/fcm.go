package service

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
)

// fcmMaxTokens is the SendEachForMulticast limit per call.
const fcmMaxTokens = 500

// multicastSender is the part of *messaging.Client the transport needs.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMClient sends multicast notifications through Firebase Cloud Messaging.
type FCMClient struct {
	client multicastSender
	log    zerolog.Logger
}

// NewFCMClient wraps a messaging client obtained from the Firebase app.
func NewFCMClient(client multicastSender, logger zerolog.Logger) *FCMClient {
	return &FCMClient{client: client, log: logger}
}

// SendMulticast sends msg to every token, 500 tokens per FCM call, and
// returns the merged per-token breakdown in token order.
//
// A failure of any batch call fails the whole send: the caller has not
// claimed the ledger yet and will retry, so partial batches are re-sent
// rather than silently dropped.
func (c *FCMClient) SendMulticast(ctx context.Context, msg model.PushMessage) (*model.MulticastResult, error) {
	result := &model.MulticastResult{Responses: make([]model.SendResponse, 0, len(msg.Tokens))}

	for _, batch := range chunk(msg.Tokens, fcmMaxTokens) {
		message := &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Sound: "default",
					},
				},
			},
		}

		response, err := c.client.SendEachForMulticast(ctx, message)
		if err != nil {
			return nil, fmt.Errorf("send multicast: %w", err)
		}

		for i, resp := range response.Responses {
			sr := model.SendResponse{Token: batch[i], Success: resp.Success, MessageID: resp.MessageID}
			if resp.Error != nil {
				sr.Error = resp.Error.Error()
				c.log.Debug().Str("token", redactToken(batch[i])).Err(resp.Error).Msg("token rejected")
			}
			result.Add(sr)
		}
	}

	c.log.Info().
		Int("tokens", len(msg.Tokens)).
		Int("success", result.SuccessCount).
		Int("failure", result.FailureCount).
		Msg("fcm multicast sent")

	return result, nil
}

// redactToken keeps a short prefix for correlating logs.
func redactToken(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
