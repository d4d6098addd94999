package service

import (
	"context"
	"errors"
	"testing"

	"bloodconnect/internal/model"
)

func TestNotificationService_RegisterDeviceToken(t *testing.T) {
	tests := []struct {
		name         string
		req          model.RegisterTokenRequest
		wantErr      error
		wantPlatform string
	}{
		{"expo token defaults to expo", model.RegisterTokenRequest{UserID: "u1", Token: "ExponentPushToken[x]"}, nil, model.PlatformExpo},
		{"raw fcm token defaults to android", model.RegisterTokenRequest{UserID: "u1", Token: "fcm-abc"}, nil, model.PlatformAndroid},
		{"explicit platform kept", model.RegisterTokenRequest{UserID: "u1", Token: "apns-abc", Platform: model.PlatformIOS}, nil, model.PlatformIOS},
		{"platform is normalized", model.RegisterTokenRequest{UserID: "u1", Token: "fcm-abc", Platform: " Android "}, nil, model.PlatformAndroid},
		{"unknown platform", model.RegisterTokenRequest{UserID: "u1", Token: "t", Platform: "web"}, model.ErrUnknownPlatform, ""},
		{"missing user", model.RegisterTokenRequest{Token: "t"}, model.ErrTokenUserIDRequired, ""},
		{"missing token", model.RegisterTokenRequest{UserID: "u1"}, model.ErrTokenRequired, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mockDeviceTokenRepository{}
			svc := NewNotificationService(tokens)

			err := svc.RegisterDeviceToken(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(tokens.tokens) != 0 {
					t.Errorf("stored %v on invalid input", tokens.tokens)
				}
				return
			}
			if len(tokens.tokens) != 1 || tokens.tokens[0].Platform != tt.wantPlatform {
				t.Errorf("stored %+v, want platform %q", tokens.tokens, tt.wantPlatform)
			}
		})
	}
}

func TestNotificationService_TokenMovesToNewOwner(t *testing.T) {
	tokens := &mockDeviceTokenRepository{}
	svc := NewNotificationService(tokens)
	ctx := context.Background()

	_ = svc.RegisterDeviceToken(ctx, &model.RegisterTokenRequest{UserID: "u1", Token: "T"})
	_ = svc.RegisterDeviceToken(ctx, &model.RegisterTokenRequest{UserID: "u2", Token: "T"})

	if len(tokens.tokens) != 1 || tokens.tokens[0].UserID != "u2" {
		t.Errorf("tokens = %+v, want T owned by u2 only", tokens.tokens)
	}
}

func TestNotificationService_RemoveDeviceToken(t *testing.T) {
	tokens := &mockDeviceTokenRepository{}
	tokens.register("u1", "T1", "T2")
	svc := NewNotificationService(tokens)

	if err := svc.RemoveDeviceToken(context.Background(), "T1"); err != nil {
		t.Fatal(err)
	}
	if len(tokens.tokens) != 1 || tokens.tokens[0].Token != "T2" {
		t.Errorf("tokens = %+v", tokens.tokens)
	}

	if err := svc.RemoveDeviceToken(context.Background(), ""); !errors.Is(err, model.ErrTokenRequired) {
		t.Errorf("err = %v, want ErrTokenRequired", err)
	}
}
