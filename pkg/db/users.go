package db

import (
	"context"
	"time"
)

// User is a record in the user table.
type User struct {
	Name string

	// bearer token authenticating this user.
	Token string

	CreatedAt time.Time
}

func (u User) Equal(o User) bool {
	return u.Name == o.Name &&
		u.Token == o.Token &&
		u.CreatedAt.Equal(o.CreatedAt)
}

type UserInterface interface {
	// GetByToken finds the user owning a token.
	//
	// Return
	//
	// - User
	//
	// - error: ErrMissing when no user owns the token.
	GetByToken(ctx context.Context, token string) (User, error)

	// Get a user by name.
	//
	// Return
	//
	// - User
	//
	// - error: ErrMissing when no such user exists.
	Get(ctx context.Context, name string) (User, error)

	// Ensure that a user exists, creating it with the given token
	// when it does not.
	//
	// Return
	//
	// - User: the existing or created user. For an existing user,
	//   the stored token is returned, not the given one.
	//
	// - bool: true when the user was created by this call.
	//
	// - error
	Ensure(ctx context.Context, name string, token string) (User, bool, error)
}
