package remote

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Aminu222/tradelink-sub001/internal/domain"
)

// TokenSource supplies the caller's credential per call. Auth state can
// change mid-session (login in another tab, expiry), so consumers ask on
// every action instead of caching the answer.
type TokenSource interface {
	// Token returns a bearer token, or domain.ErrNoSession when the shopper
	// is unauthenticated.
	Token() (string, error)
}

// StaticToken holds one issued JWT. It checks the exp claim locally before
// handing the token out so an expired credential reads as "no session"
// instead of a doomed request.
type StaticToken struct {
	raw string
}

func NewStaticToken(raw string) *StaticToken {
	return &StaticToken{raw: raw}
}

func (s *StaticToken) Token() (string, error) {
	if s == nil || s.raw == "" {
		return "", domain.ErrNoSession
	}

	// Signature verification belongs to the server; only the expiry matters
	// here.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(s.raw, jwt.MapClaims{})
	if err != nil {
		return "", domain.ErrNoSession
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return "", domain.ErrNoSession
	}
	if exp != nil && exp.Before(nowFunc()) {
		return "", domain.ErrNoSession
	}
	return s.raw, nil
}

// NoSession is a TokenSource for a shopper who never logged in.
type NoSession struct{}

func (NoSession) Token() (string, error) { return "", domain.ErrNoSession }
