package db

import (
	"context"
	"time"
)

// SignKey is a record in the sign_key table, an HMAC key for signing
// short-lived download URLs.
type SignKey struct {
	// key id, put in JWT header "kid".
	KID string

	// signing algorithm name, like "HS256".
	Alg string

	// raw HMAC secret.
	Secret []byte

	// when the key stops being used for signing.
	// Tokens issued before may outlive this for a verification margin.
	Exp time.Time
}

func (k SignKey) Equal(o SignKey) bool {
	return k.KID == o.KID &&
		k.Alg == o.Alg &&
		string(k.Secret) == string(o.Secret) &&
		k.Exp.Equal(o.Exp)
}

type KeyInterface interface {
	// Provide returns a key valid for signing for at least margin from now.
	//
	// When no stored key satisfies that, a new key is issued and stored.
	// Expired keys older than the verification margin are dropped.
	//
	// Return
	//
	// - SignKey
	//
	// - error
	Provide(ctx context.Context, margin time.Duration) (SignKey, error)

	// Get a key by its key id, for verification.
	//
	// Return
	//
	// - SignKey
	//
	// - error: ErrMissing when no such key exists.
	Get(ctx context.Context, kid string) (SignKey, error)
}
