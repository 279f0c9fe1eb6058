// Package identity provides anonymous per-device learner identity.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/eduagents/tutord/internal/domain"
	"github.com/eduagents/tutord/internal/store"
)

const (
	// AnonCookieName carries the opaque stable learner handle. It is never
	// reused for a different learner.
	AnonCookieName   = "tutord_anon_id"
	anonCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const (
	identityKey contextKey = iota
	usernameKey
)

var anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)

// FromContext extracts the learner identity from the request context.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(identityKey).(string); ok {
		return v
	}
	return ""
}

// UsernameFromContext extracts the display username from the request context.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey).(string); ok {
		return v
	}
	return ""
}

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func deriveUsername(identity string) string {
	if len(identity) > 13 {
		return "learner-" + identity[len(identity)-8:]
	}
	return "learner"
}

func ensureLearner(ctx context.Context, repo store.Repository, identity string) error {
	learner, err := repo.GetLearner(ctx, identity)
	if err != nil {
		return err
	}
	if learner != nil {
		return nil
	}

	now := time.Now()
	return repo.UpsertLearner(ctx, &domain.Learner{
		Identity:   identity,
		Username:   deriveUsername(identity),
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func getOrCreateAnonID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(AnonCookieName); err == nil && isValidAnonID(c.Value) {
		setAnonCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateAnonID()
	if err != nil {
		return "", err
	}
	setAnonCookie(w, id, isDev)
	return id, nil
}

func setAnonCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware injects anonymous per-device identity and ensures a learner
// record exists in the store.
func Middleware(repo store.Repository, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			learnerID, err := getOrCreateAnonID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"failed to establish anonymous identity"}`, http.StatusInternalServerError)
				return
			}

			if err := ensureLearner(r.Context(), repo, learnerID); err != nil {
				http.Error(w, `{"error":"failed to initialize learner record"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, learnerID)
			ctx = context.WithValue(ctx, usernameKey, deriveUsername(learnerID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
