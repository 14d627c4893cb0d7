package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/streamcam/backend/internal/errors"
)

const defaultExpiry = 24 * time.Hour

// NewAuth creates a new JWT authenticator with HS256 algorithm (default)
func NewAuth(secret string) Auth {
	return NewAuthWithAlgorithm(secret, jwt.SigningMethodHS256)
}

// NewAuthWithAlgorithm creates a new JWT authenticator with specified algorithm
// Supported algorithms: HS256, HS384, HS512
func NewAuthWithAlgorithm(secret string, method jwt.SigningMethod) Auth {
	allowedMethods := map[string]bool{
		method.Alg(): true,
	}
	return &jwtAuthImpl{
		secret:         []byte(secret),
		signingMethod:  method,
		allowedMethods: allowedMethods,
		expiry:         defaultExpiry,
	}
}

type jwtAuthImpl struct {
	secret         []byte
	signingMethod  jwt.SigningMethod
	allowedMethods map[string]bool
	expiry         time.Duration
}

// Sign creates an access token for the given user
func (j *jwtAuthImpl) Sign(userID string) (string, error) {
	if userID == "" {
		return "", errors.New(ErrInvalidRequest, "userID is required")
	}

	now := time.Now()
	claims := &Payload{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
		},
	}

	token := jwt.NewWithClaims(j.signingMethod, claims)
	return token.SignedString(j.secret)
}

// Verify verifies a token with strict algorithm validation
func (j *jwtAuthImpl) Verify(tokenString string) (*Payload, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Payload{}, func(token *jwt.Token) (any, error) {
		// Strictly validate the algorithm matches what we expect
		alg := token.Method.Alg()
		if !j.allowedMethods[alg] {
			return nil, errors.Newf(
				ErrInvalidToken,
				"unexpected signing method: %s (expected: %s)",
				alg, j.signingMethod.Alg(),
			)
		}
		return j.secret, nil
	})

	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err, "token verification failed")
	}

	if claims, ok := token.Claims.(*Payload); ok && token.Valid {
		if claims.UserID == "" {
			return nil, errors.New(ErrInvalidToken, "missing user id in token")
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
