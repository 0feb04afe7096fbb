package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"furnistore/storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("token expired")

// TokenDecoder extracts the user claims carried by a bearer token.
type TokenDecoder interface {
	Decode(token string) (domain.User, error)
}

type TokenDecoderFunc func(token string) (domain.User, error)

func (f TokenDecoderFunc) Decode(token string) (domain.User, error) {
	return f(token)
}

// JWTDecoder reads claims without checking the signature; the backend verifies
// every request it receives, the client only needs to know who is logged in.
type JWTDecoder struct {
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTDecoder() *JWTDecoder {
	return &JWTDecoder{
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithJSONNumber()),
	}
}

func (d *JWTDecoder) Decode(token string) (domain.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return domain.User{}, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return domain.User{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil && !exp.After(d.now()) {
		return domain.User{}, ErrTokenExpired
	}

	id, ok := numericClaim(claims, "id")
	if !ok {
		id, ok = numericClaim(claims, "sub")
	}
	if !ok {
		return domain.User{}, fmt.Errorf("token carries no user id")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return domain.User{}, fmt.Errorf("token carries no email")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = domain.RoleBuyer.String()
	}

	return domain.User{
		ID:    id,
		Email: email,
		Role:  domain.Role(role),
	}, nil
}

func numericClaim(claims jwt.MapClaims, name string) (int64, bool) {
	switch v := claims[name].(type) {
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
