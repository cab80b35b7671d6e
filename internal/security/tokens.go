package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when a token's signature is valid but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when a token is structurally invalid or its signature does not verify.
	ErrTokenMalformed = errors.New("malformed token")
)

// BearerClaims holds the JWT claims for the bearer token issued at login.
type BearerClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and verifies stateless bearer JWTs using RS256 or ES256
// (private/public key). Tokens carry a fixed lifetime set at issuance and are
// not revocable before expiry; the server keeps no record of issued tokens.
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	ttl        time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key
// (RSA or ECDSA). issuer and audience are set on claims and checked on Verify.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
	}
}

// Issue issues a bearer JWT for the given user. Returns the signed token and
// its expiration time. Stateless: no side effect beyond signing.
func (p *TokenProvider) Issue(userID string) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := BearerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = p.sign(claims)
	return token, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrTokenMalformed
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

// Verify parses and validates the token (signature, exp, iss, aud) and returns
// the embedded user id. Returns ErrTokenExpired when the expiry has passed and
// ErrTokenMalformed for any structural or signature failure. It does not
// resolve the user id against storage; the caller handles an unknown user.
func (p *TokenProvider) Verify(tokenString string) (userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &BearerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return p.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return p.publicKey, nil
		}
		return nil, ErrTokenMalformed
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}
	claims, ok := token.Claims.(*BearerClaims)
	if !ok || !token.Valid {
		return "", ErrTokenMalformed
	}
	if claims.Issuer != p.issuer {
		return "", ErrTokenMalformed
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
