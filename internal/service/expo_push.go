package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
)

// ExpoPushClient sends push notifications via Expo's Push API.
//
// The React Native app registers an Expo push token
// ("ExponentPushToken[xxx]") and Expo relays to APNs/FCM. No server
// credentials are needed.
type ExpoPushClient struct {
	httpClient *http.Client
	endpoint   string
	log        zerolog.Logger
}

// ExpoPushMessage is the payload for Expo's Push API.
type ExpoPushMessage struct {
	To       []string          `json:"to"`
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"` // "default", "normal", "high"
}

// ExpoPushResponse is the response from Expo's API.
type ExpoPushResponse struct {
	Data []ExpoPushTicket `json:"data"`
}

type ExpoPushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"` // "DeviceNotRegistered", "MessageTooBig", ...
	} `json:"details,omitempty"`
}

const (
	// ExpoPushURL is the production push endpoint.
	ExpoPushURL = "https://exp.host/--/api/v2/push/send"

	// expoMaxTokens is the per-request message limit.
	expoMaxTokens = 100
)

// NewExpoPushClient creates a client for endpoint (ExpoPushURL in production).
func NewExpoPushClient(endpoint string, timeout time.Duration, logger zerolog.Logger) *ExpoPushClient {
	if endpoint == "" {
		endpoint = ExpoPushURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExpoPushClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		log:        logger,
	}
}

// IsExpoToken reports whether token has the Expo push token shape.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// SendMulticast sends msg to every token. Tokens without the Expo shape are
// reported as failed without being sent.
func (c *ExpoPushClient) SendMulticast(ctx context.Context, msg model.PushMessage) (*model.MulticastResult, error) {
	outcome := make(map[string]model.SendResponse, len(msg.Tokens))

	valid := make([]string, 0, len(msg.Tokens))
	for _, token := range msg.Tokens {
		if IsExpoToken(token) {
			valid = append(valid, token)
			continue
		}
		outcome[token] = model.SendResponse{Token: token, Error: "InvalidTokenFormat"}
	}

	for _, batch := range chunk(valid, expoMaxTokens) {
		tickets, err := c.send(ctx, batch, msg)
		if err != nil {
			return nil, err
		}

		for i, token := range batch {
			if i >= len(tickets) {
				outcome[token] = model.SendResponse{Token: token, Error: "MissingTicket"}
				continue
			}
			ticket := tickets[i]
			if ticket.Status == "ok" {
				outcome[token] = model.SendResponse{Token: token, Success: true, MessageID: ticket.ID}
				continue
			}

			reason := ticket.Details.Error
			if reason == "" {
				reason = ticket.Message
			}
			outcome[token] = model.SendResponse{Token: token, Error: reason}
		}
	}

	result := &model.MulticastResult{Responses: make([]model.SendResponse, 0, len(msg.Tokens))}
	for _, token := range msg.Tokens {
		result.Add(outcome[token])
	}

	c.log.Info().
		Int("tokens", len(msg.Tokens)).
		Int("success", result.SuccessCount).
		Int("failure", result.FailureCount).
		Msg("expo multicast sent")

	return result, nil
}

func (c *ExpoPushClient) send(ctx context.Context, tokens []string, msg model.PushMessage) ([]ExpoPushTicket, error) {
	payload, err := json.Marshal(ExpoPushMessage{
		To:       tokens,
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Sound:    "default",
		Priority: "high",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	// Expo accepted the request at this point; an unreadable body must not
	// turn into a retry that pushes the same message twice.
	var pushResp ExpoPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		c.log.Warn().Err(err).Int("tokens", len(tokens)).Msg("unreadable expo response")
		return nil, nil
	}
	return pushResp.Data, nil
}
