package keychain

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	ddb "github.com/dstackai/dstack/pkg/db"
)

var ErrNoKeyFound error = errors.New("no key found")
var ErrInvalidToken error = errors.New("invalid token")

// Keychain signs and verifies JWS tokens with HMAC keys stored in the
// database. See ddb.KeyInterface.
type Keychain struct {
	keys ddb.KeyInterface
}

func New(keys ddb.KeyInterface) Keychain {
	return Keychain{keys: keys}
}

// NewJWS signs claims and returns a JWS token string.
//
// The signing key is guaranteed to stay verifiable for at least margin
// from now; do not issue tokens expiring later than that.
func (kc Keychain) NewJWS(ctx context.Context, margin time.Duration, claims jwt.Claims) (string, error) {
	k, err := kc.keys.Provide(ctx, margin)
	if err != nil {
		return "", err
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = k.KID
	return tok.SignedString(k.Secret)
}

// VerifyJWS verifies a JWS token and returns its claims.
//
// The type C should be a pointer to a struct implementing jwt.Claims.
//
// Errors are ErrNoKeyFound when the token names an unknown key,
// ErrInvalidToken when the token is broken, forged or expired,
// or other errors from jwt.ParseWithClaims.
func VerifyJWS[C jwt.Claims](ctx context.Context, kc Keychain, token string) (C, error) {
	_c := *new(C)
	{
		rc := reflect.ValueOf(_c)
		if rc.Kind() != reflect.Ptr {
			return *new(C), errors.New("claims type must be a pointer")
		}
		_c = reflect.New(rc.Type().Elem()).Interface().(C)
	}

	tok, err := jwt.ParseWithClaims(token, _c, func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, ErrNoKeyFound
		}
		k, err := kc.keys.Get(ctx, kid)
		if err != nil {
			if errors.Is(err, ddb.ErrMissing) {
				return nil, ErrNoKeyFound
			}
			return nil, err
		}
		if k.Alg != t.Method.Alg() {
			return nil, ErrNoKeyFound
		}
		return k.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) ||
			errors.Is(err, jwt.ErrSignatureInvalid) ||
			errors.Is(err, jwt.ErrTokenExpired) {
			return *new(C), errors.Join(ErrInvalidToken, err)
		}
		return *new(C), err
	}

	if c, ok := tok.Claims.(C); ok {
		return c, nil
	}
	return *new(C), fmt.Errorf("%w: unexpected claims type: %T", ErrInvalidToken, tok.Claims)
}

// DownloadClaims authorizes downloading a single attachment payload.
//
// A token carrying these claims is put in the "sig" query parameter of
// pre-signed attachment URLs.
type DownloadClaims struct {
	jwt.RegisteredClaims

	FrameId string `json:"frame_id"`
	Index   int    `json:"index"`
}
