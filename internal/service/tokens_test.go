package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"bloodconnect/internal/model"
)

func TestUniqueTokens(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"repeats keep first position", []string{"A", "A", "B"}, []string{"A", "B"}},
		{"blanks dropped", []string{"", "B", "", "A", "B"}, []string{"B", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueTokens(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueTokens(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenResolver_UserTokens(t *testing.T) {
	tokens := &mockDeviceTokenRepository{}
	tokens.register("u1", "T1", "T2")
	r := NewTokenResolver(&mockUserRepository{}, tokens)
	ctx := context.Background()

	got, err := r.UserTokens(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"T1", "T2"}) {
		t.Errorf("UserTokens(u1) = %v", got)
	}

	for _, userID := range []string{"unknown", ""} {
		got, err := r.UserTokens(ctx, userID)
		if err != nil {
			t.Errorf("UserTokens(%q) err = %v, want nil", userID, err)
		}
		if len(got) != 0 {
			t.Errorf("UserTokens(%q) = %v, want empty", userID, got)
		}
	}
}

func TestTokenResolver_AdminTokens(t *testing.T) {
	users := &mockUserRepository{users: []model.User{
		{ID: "U1", Role: model.RoleAdmin},
		{ID: "U2", Role: model.RoleAdmin},
		{ID: "D1", Role: "donor"},
	}}

	t.Run("union", func(t *testing.T) {
		tokens := &mockDeviceTokenRepository{}
		tokens.register("U1", "T1", "T2")
		tokens.register("U2", "T3")
		tokens.register("D1", "X")

		got, admins, err := NewTokenResolver(users, tokens).AdminTokens(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"T1", "T2", "T3"}) {
			t.Errorf("tokens = %v, want [T1 T2 T3]", got)
		}
		if len(admins) != 2 {
			t.Errorf("admins = %v, want 2", admins)
		}
	})

	t.Run("shared token appears once", func(t *testing.T) {
		tokens := &mockDeviceTokenRepository{}
		tokens.register("U1", "T1", "T2")
		tokens.register("U2", "T3", "T1")

		got, _, err := NewTokenResolver(users, tokens).AdminTokens(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"T1", "T2", "T3"}) {
			t.Errorf("tokens = %v, want [T1 T2 T3]", got)
		}
	})

	t.Run("store error", func(t *testing.T) {
		failing := &mockUserRepository{listErr: errors.New("unavailable")}
		if _, _, err := NewTokenResolver(failing, &mockDeviceTokenRepository{}).AdminTokens(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestTokenResolver_TokensOwnedByUser(t *testing.T) {
	tokens := &mockDeviceTokenRepository{}
	tokens.register("u1", "A", "B")
	tokens.register("u2", "C")
	r := NewTokenResolver(&mockUserRepository{}, tokens)

	got, err := r.TokensOwnedByUser(context.Background(), "u1", []string{"C", "B", "B", "Z", "A"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("TokensOwnedByUser = %v, want [B A]", got)
	}
}

func TestTokenResolver_OwnersOf(t *testing.T) {
	tokens := &mockDeviceTokenRepository{}
	tokens.register("u1", "A", "B")
	tokens.register("u2", "C")
	r := NewTokenResolver(&mockUserRepository{}, tokens)

	owners, err := r.OwnersOf(context.Background(), []string{"A", "C", "A", "nobody"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{"u1": {"A"}, "u2": {"C"}}
	if !reflect.DeepEqual(owners, want) {
		t.Errorf("OwnersOf = %v, want %v", owners, want)
	}
	if tokens.getByTokensCalls != 1 {
		t.Errorf("store scans = %d, want 1", tokens.getByTokensCalls)
	}

	empty, err := r.OwnersOf(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("OwnersOf(nil) = %v, %v", empty, err)
	}
}
