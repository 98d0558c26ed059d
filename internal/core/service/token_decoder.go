package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/poolconsultant/portal/internal/core/domain"
	"github.com/poolconsultant/portal/internal/core/ports"
)

var errMalformedPayload = errors.New("malformed token payload")

// TokenDecoder reads bearer token payloads without contacting the backend.
// Signatures are not verified here: the backend checks the token on every
// request it serves, the portal only needs the claims for routing.
type TokenDecoder struct {
	parser *jwt.Parser
	now    func() time.Time
	log    zerolog.Logger
}

// NewTokenDecoder returns a decoder using the wall clock.
func NewTokenDecoder(log zerolog.Logger) *TokenDecoder {
	return &TokenDecoder{
		parser: jwt.NewParser(jwt.WithJSONNumber()),
		now:    time.Now,
		log:    log,
	}
}

// WithClock replaces the clock used for expiry checks.
func (d *TokenDecoder) WithClock(now func() time.Time) *TokenDecoder {
	d.now = now
	return d
}

// Parse decodes the payload of raw. It does not check expiry.
func (d *TokenDecoder) Parse(raw string) (domain.TokenPayload, error) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(raw, claims); err != nil {
		return domain.TokenPayload{}, fmt.Errorf("parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.TokenPayload{}, fmt.Errorf("%w: exp", errMalformedPayload)
	}

	roleClaim, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleClaim)
	if err != nil {
		return domain.TokenPayload{}, fmt.Errorf("%w: role", errMalformedPayload)
	}

	userID, ok := int64Claim(claims["user_id"])
	if !ok {
		return domain.TokenPayload{}, fmt.Errorf("%w: user_id", errMalformedPayload)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		// the backend puts the email in sub
		email, _ = claims["sub"].(string)
	}

	return domain.TokenPayload{
		Email:  email,
		Role:   role,
		UserID: userID,
		Exp:    exp.Unix(),
	}, nil
}

// Current returns the payload of the token persisted in storage, or false
// when there is none, it cannot be decoded, or it has expired. An expired
// token is removed from storage so it is not evaluated again.
func (d *TokenDecoder) Current(ctx context.Context, storage ports.SessionStorage) (*domain.TokenPayload, bool) {
	persisted, err := storage.Load(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("failed to load persisted session")
		return nil, false
	}
	if persisted.Empty() {
		return nil, false
	}

	payload, err := d.Parse(persisted.Token)
	if err != nil {
		d.log.Debug().Err(err).Msg("persisted token rejected")
		return nil, false
	}

	if payload.ExpiredAt(d.now()) {
		if err := storage.RemoveToken(ctx); err != nil {
			d.log.Warn().Err(err).Int64("user_id", payload.UserID).Msg("failed to remove expired token")
		}
		d.log.Info().Int64("user_id", payload.UserID).Msg("persisted token expired")
		return nil, false
	}

	return &payload, true
}

func int64Claim(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), n == float64(int64(n))
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
