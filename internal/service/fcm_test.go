package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
)

type fakeMulticastSender struct {
	batches [][]string
	failAt  int // batch index that returns an error, -1 for none
	reject  map[string]bool
}

func (f *fakeMulticastSender) SendEachForMulticast(ctx context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	idx := len(f.batches)
	f.batches = append(f.batches, m.Tokens)
	if idx == f.failAt {
		return nil, errors.New("fcm: service unavailable")
	}

	br := &messaging.BatchResponse{}
	for _, token := range m.Tokens {
		if f.reject[token] {
			br.FailureCount++
			br.Responses = append(br.Responses, &messaging.SendResponse{Error: errors.New("registration-token-not-registered")})
			continue
		}
		br.SuccessCount++
		br.Responses = append(br.Responses, &messaging.SendResponse{Success: true, MessageID: "projects/p/messages/" + token})
	}
	return br, nil
}

func TestFCMClient_SendMulticast(t *testing.T) {
	sender := &fakeMulticastSender{failAt: -1, reject: map[string]bool{"bad": true}}
	client := NewFCMClient(sender, zerolog.Nop())

	result, err := client.SendMulticast(context.Background(), model.PushMessage{
		Tokens: []string{"good", "bad"},
		Title:  "New Blood Request",
		Body:   "Blood Type: O+ — Location: Ikeja",
		Data:   map[string]string{"type": "system"},
	})
	if err != nil {
		t.Fatalf("SendMulticast: %v", err)
	}

	if result.SuccessCount != 1 || result.FailureCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", result.SuccessCount, result.FailureCount)
	}
	if result.Responses[0].Token != "good" || !result.Responses[0].Success {
		t.Errorf("responses[0] = %+v", result.Responses[0])
	}
	if result.Responses[1].Token != "bad" || result.Responses[1].Error == "" {
		t.Errorf("responses[1] = %+v", result.Responses[1])
	}
}

func TestFCMClient_BatchesOf500(t *testing.T) {
	tokens := make([]string, 1201)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}

	sender := &fakeMulticastSender{failAt: -1}
	result, err := NewFCMClient(sender, zerolog.Nop()).SendMulticast(context.Background(), model.PushMessage{Tokens: tokens})
	if err != nil {
		t.Fatalf("SendMulticast: %v", err)
	}

	if len(sender.batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(sender.batches))
	}
	for i, want := range []int{500, 500, 201} {
		if len(sender.batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(sender.batches[i]), want)
		}
	}
	if result.SuccessCount != 1201 || len(result.Responses) != 1201 {
		t.Errorf("result = %d successes, %d responses", result.SuccessCount, len(result.Responses))
	}
	if result.Responses[1200].Token != "tok-1200" {
		t.Errorf("last response token = %q", result.Responses[1200].Token)
	}
}

func TestFCMClient_BatchErrorFailsSend(t *testing.T) {
	tokens := make([]string, 600)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}

	sender := &fakeMulticastSender{failAt: 1}
	if _, err := NewFCMClient(sender, zerolog.Nop()).SendMulticast(context.Background(), model.PushMessage{Tokens: tokens}); err == nil {
		t.Fatal("expected error when a batch call fails")
	}
}

func TestRedactToken(t *testing.T) {
	if got := redactToken("short"); got != "short" {
		t.Errorf("redactToken(short) = %q", got)
	}
	if got := redactToken("abcdefghijklmnopqrstuvwxyz"); got != "abcdefghijkl..." {
		t.Errorf("redactToken(long) = %q", got)
	}
}
