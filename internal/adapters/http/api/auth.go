package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/fitquest/internal/domain/model"
)

// SignInFunc upserts the user behind a verified identity.
type SignInFunc func(ctx context.Context, id model.Identity) (model.User, error)

// Authenticator verifies HS256 bearer tokens and resolves their user.
type Authenticator struct {
	secret []byte
	issuer string
	signIn SignInFunc
}

// NewAuthenticator creates an Authenticator. An empty issuer skips the
// issuer check.
func NewAuthenticator(secret, issuer string, signIn SignInFunc) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, signIn: signIn}
}

type userKey struct{}

// UserFrom returns the authenticated user stored on ctx.
func UserFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey{}).(model.User)
	return u, ok
}

// WithUser stores u on ctx.
func WithUser(ctx context.Context, u model.User) context.Context { //nolint:gocritic // hugeParam: models travel by value
	return context.WithValue(ctx, userKey{}, u)
}

// Require rejects requests without a valid bearer token with 401 and
// otherwise calls next with the signed-in user on the context.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.auth"
		id, err := a.Identify(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, err))
			return
		}
		u, err := a.signIn(r.Context(), id)
		if err != nil {
			writeServiceError(r.Context(), w, Wrap(op, err))
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), u)))
	}
}

// Identify parses an Authorization header value into an identity.
func (a *Authenticator) Identify(header string) (model.Identity, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return model.Identity{}, errors.New("missing bearer token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	parsed, err := jwt.Parse(strings.TrimSpace(token), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, opts...)
	if err != nil {
		return model.Identity{}, fmt.Errorf("invalid bearer token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return model.Identity{}, errors.New("invalid bearer token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return model.Identity{}, errors.New("token has no subject")
	}
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return model.Identity{
		ID:              sub,
		Email:           str("email"),
		FirstName:       str("first_name"),
		LastName:        str("last_name"),
		ProfileImageURL: str("profile_image_url"),
	}, nil
}

func currentUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	u, ok := UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
	}
	return u, ok
}
