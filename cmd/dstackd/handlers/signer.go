package handlers

import (
	"context"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/dstackai/dstack/pkg/keychain"
)

// URLSigner issues and verifies tokens for pre-signed attachment URLs.
type URLSigner struct {
	kc       keychain.Keychain
	lifetime time.Duration
}

func NewURLSigner(kc keychain.Keychain, lifetime time.Duration) URLSigner {
	return URLSigner{kc: kc, lifetime: lifetime}
}

// Sign returns a server-relative URL for downloading one attachment,
// valid for the signer's lifetime without authentication.
func (s URLSigner) Sign(ctx context.Context, frameId string, index int) (string, error) {
	now := time.Now()
	token, err := s.kc.NewJWS(ctx, s.lifetime, &keychain.DownloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		FrameId: frameId,
		Index:   index,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"/api/frames/%s/attachments/%d/?sig=%s", frameId, index, token,
	), nil
}

// Verify checks a token from the "sig" query parameter against an
// attachment location.
func (s URLSigner) Verify(ctx context.Context, token string, frameId string, index int) error {
	claims, err := keychain.VerifyJWS[*keychain.DownloadClaims](ctx, s.kc, token)
	if err != nil {
		return err
	}
	if claims.FrameId != frameId || claims.Index != index {
		return fmt.Errorf(
			"%w: token is not for this attachment", keychain.ErrInvalidToken,
		)
	}
	return nil
}
