package repository

import "context"

// UserProfileRepository is the read-only view into the user directory this
// subsystem needs: email -> user resolution and the referral edge.
type UserProfileRepository interface {
	// FindIDByEmail resolves a profile ID by email or returns domain.ErrNotFound.
	FindIDByEmail(ctx context.Context, tx Tx, email string) (string, error)

	// ReferrerOf returns the affiliate that referred the user, or nil when the
	// user was not referred.
	ReferrerOf(ctx context.Context, tx Tx, userID string) (*string, error)
}
