package service

import (
	"context"
	"fmt"

	"bloodconnect/internal/model"
	"bloodconnect/internal/repository"
)

// TokenResolver answers "which devices should receive this?" from the
// store. It holds no state between calls.
type TokenResolver struct {
	userRepo  repository.UserRepository
	tokenRepo repository.DeviceTokenRepository
}

func NewTokenResolver(userRepo repository.UserRepository, tokenRepo repository.DeviceTokenRepository) *TokenResolver {
	return &TokenResolver{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// UserTokens returns the tokens registered to userID. Unknown users have
// no tokens.
func (r *TokenResolver) UserTokens(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return []string{}, nil
	}

	registered, err := r.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve tokens for user %s: %w", userID, err)
	}

	tokens := make([]string, 0, len(registered))
	for _, t := range registered {
		tokens = append(tokens, t.Token)
	}
	return UniqueTokens(tokens), nil
}

// AdminTokens returns the union of every admin's tokens, each token once,
// together with the admin snapshot it was built from.
func (r *TokenResolver) AdminTokens(ctx context.Context) ([]string, []model.User, error) {
	admins, err := r.userRepo.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("list admins: %w", err)
	}

	var all []string
	for _, admin := range admins {
		tokens, err := r.UserTokens(ctx, admin.ID)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, tokens...)
	}
	return UniqueTokens(all), admins, nil
}

// TokensOwnedByUser returns the candidates registered to userID.
func (r *TokenResolver) TokensOwnedByUser(ctx context.Context, userID string, candidates []string) ([]string, error) {
	owned, err := r.UserTokens(ctx, userID)
	if err != nil {
		return nil, err
	}

	ownedSet := make(map[string]struct{}, len(owned))
	for _, t := range owned {
		ownedSet[t] = struct{}{}
	}

	matches := []string{}
	for _, t := range UniqueTokens(candidates) {
		if _, ok := ownedSet[t]; ok {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// OwnersOf groups the candidates by owning user with a single store scan.
// Candidates nobody owns are left out; owners may hold any subset.
func (r *TokenResolver) OwnersOf(ctx context.Context, candidates []string) (map[string][]string, error) {
	owners := make(map[string][]string)
	if len(candidates) == 0 {
		return owners, nil
	}

	registered, err := r.tokenRepo.GetByTokens(ctx, UniqueTokens(candidates))
	if err != nil {
		return nil, fmt.Errorf("resolve token owners: %w", err)
	}

	seen := make(map[string]struct{}, len(registered))
	for _, t := range registered {
		pair := t.UserID + "\x00" + t.Token
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		owners[t.UserID] = append(owners[t.UserID], t.Token)
	}
	return owners, nil
}

// UniqueTokens removes blanks and repeats, keeping first-seen order.
func UniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}
