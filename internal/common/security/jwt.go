package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOperator = "operator"

	unsubscribeAudience = "starfit-unsubscribe"
)

var TokenAuth *jwtauth.JWTAuth

var signingKey []byte

func InitJWT(key []byte) {
	signingKey = key
	TokenAuth = jwtauth.New("HS256", key, nil)
}

// GenerateToken issues an API token for the operator console.
func GenerateToken(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetSubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("sub claim is missing or not a string")
	}
	return sub, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

// UnsubscribeToken signs an address for the List-Unsubscribe link of result
// emails. The token does not expire.
func UnsubscribeToken(email string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  email,
		Audience: jwt.ClaimStrings{unsubscribeAudience},
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// ParseUnsubscribeToken returns the address an unsubscribe token was issued for.
func ParseUnsubscribeToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(unsubscribeAudience),
	)
	if err != nil {
		return "", fmt.Errorf("invalid unsubscribe token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("invalid unsubscribe token: no subject")
	}
	return claims.Subject, nil
}
