// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the Supabase adapter so tests can substitute fakes.
package port

import (
	"context"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
)

// ProfileStore is the mirrored profiles table in the relational store.
// Implemented by the Supabase PostgREST adapter.
type ProfileStore interface {
	// UpsertProfile inserts or replaces the row keyed by p.ID and returns
	// the stored representation.
	UpsertProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error)

	// ListProfiles returns rows ordered by created_at ascending.
	ListProfiles(ctx context.Context, filter domain.ProfileFilter) ([]domain.Profile, error)

	// GetProfileByEmail returns nil, nil when no row matches.
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)

	// UpdateStatus patches status on all rows matching id and/or email
	// (AND semantics) and returns the updated rows. No match is not an error.
	UpdateStatus(ctx context.Context, id, email, status string) ([]domain.Profile, error)

	// DeleteProfiles removes all rows matching id and/or email and returns
	// the deleted rows. No match is not an error.
	DeleteProfiles(ctx context.Context, id, email string) ([]domain.Profile, error)
}

// IdentityAdmin is the GoTrue admin surface used for account lifecycle.
type IdentityAdmin interface {
	// GetUserByEmail returns nil, nil when no account exists.
	GetUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error)

	// CreateUser creates an account with the email already confirmed.
	CreateUser(ctx context.Context, email string) (*domain.AuthUser, error)

	// DeleteUser removes the auth account by GoTrue user id.
	DeleteUser(ctx context.Context, userID string) error
}

// Pinger probes the Supabase REST and Auth subsystems for health checks.
type Pinger interface {
	PingRest(ctx context.Context) error
	PingAuth(ctx context.Context) error
}
