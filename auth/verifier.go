package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"wtfSocial/domain"
)

// Claims are the token claims of the identity provider we care about.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// Identity converts the claims into the provider independent domain.Identity.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		ExternalID: c.Subject,
		Email:      c.Email,
		Name:       c.Name,
		Username:   c.Username,
		Picture:    c.Picture,
	}
}

// VerifierConfig configures how bearer tokens are checked. HMACSecret enables HS256
// tokens, JWKSURL enables RS256/ES256 tokens signed with one of the provider's keys.
// Issuer, when set, must match the iss claim.
type VerifierConfig struct {
	HMACSecret string
	JWKSURL    string
	Issuer     string
}

// Verifier checks bearer tokens of the identity provider.
type Verifier struct {
	secret  []byte
	issuer  string
	jwksURL string
	jwks    *jwk.Cache
}

// NewVerifier returns a Verifier for cfg. With a JWKS url the key set is fetched
// once up front and refreshed in the background for as long as ctx lives.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if cfg.HMACSecret == "" && cfg.JWKSURL == "" {
		return nil, errors.New("auth: either an HMAC secret or a JWKS url is required")
	}
	v := &Verifier{
		secret:  []byte(cfg.HMACSecret),
		issuer:  cfg.Issuer,
		jwksURL: cfg.JWKSURL,
	}
	if cfg.JWKSURL != "" {
		v.jwks = jwk.NewCache(ctx)
		if err := v.jwks.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
			return nil, fmt.Errorf("auth: register jwks: %w", err)
		}
		if _, err := v.jwks.Refresh(ctx, cfg.JWKSURL); err != nil {
			return nil, fmt.Errorf("auth: fetch jwks: %w", err)
		}
	}
	return v, nil
}

// Verify checks the signature and the time and issuer claims of token and returns its claims.
// A leading "Bearer " is ignored.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, errors.New("auth: empty token")
	}

	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key(ctx, t)
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: verify token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}
	return claims, nil
}

// key picks the verification key for t based on its signing method and key id.
func (v *Verifier) key(ctx context.Context, t *jwt.Token) (interface{}, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, errors.New("HS256 tokens are not accepted")
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		if v.jwks == nil {
			return nil, errors.New("asymmetric tokens are not accepted")
		}
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token has no key id")
	}
	set, err := v.jwks.Get(ctx, v.jwksURL)
	if err != nil {
		return nil, err
	}
	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
