// Package flowhandoff carries a verification subject between flow steps.
//
// The subject travels in a signed, short-lived cookie scoped to one flow.
// The step URL also carries it as a query parameter so deep links and new
// tabs still resolve when the cookie is missing.
package flowhandoff

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/requestmeta"
	"github.com/anvistudio/storefront/internal/services/storefront/routepath"
	"github.com/anvistudio/storefront/internal/services/storefront/verification"
)

const (
	cookiePrefix = "sf_flow_"
	issuer       = "storefront"
	// maxSubjectLength bounds identifiers accepted from the query string.
	maxSubjectLength = 254
	minKeyLength     = 32
)

// Source reports where a subject was resolved from.
type Source string

const (
	SourceHandoff Source = "handoff"
	SourceQuery   Source = "query"
)

// Resolution is a subject resolved for one flow.
type Resolution struct {
	Subject string
	Source  Source
	// Superseded is set when a valid cookie named a different subject.
	Superseded bool
}

type handoffClaims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies handoff cookies.
type Codec struct {
	key    []byte
	ttl    time.Duration
	policy requestmeta.SchemePolicy
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock overrides the clock used for issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec builds a codec that signs with key and expires tokens after ttl.
func NewCodec(key []byte, ttl time.Duration, policy requestmeta.SchemePolicy, opts ...Option) (*Codec, error) {
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("flow handoff key must be at least %d bytes", minKeyLength)
	}
	if ttl <= 0 {
		return nil, errors.New("flow handoff ttl must be positive")
	}
	codec := &Codec{
		key:    append([]byte(nil), key...),
		ttl:    ttl,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(codec)
		}
	}
	return codec, nil
}

// CookieName returns the handoff cookie for flow.
func CookieName(flow verification.Flow) string {
	return cookiePrefix + string(flow)
}

// StepURL returns path with the flow subject appended as the query fallback.
func StepURL(path string, flow verification.Flow, subject string) string {
	return routepath.WithQuery(path, flow.SubjectParam(), subject)
}

// Issue signs a handoff token for subject in flow.
func (c *Codec) Issue(flow verification.Flow, subject string) (string, error) {
	if c == nil {
		return "", errors.New("flow handoff is not configured")
	}
	subject = strings.TrimSpace(subject)
	if !flow.Valid() {
		return "", fmt.Errorf("unknown flow %q", flow)
	}
	if subject == "" {
		return "", errors.New("flow handoff subject is required")
	}
	now := c.now().UTC()
	claims := handoffClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{string(flow)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign flow handoff: %w", err)
	}
	return token, nil
}

// Verify checks token for flow and returns its subject.
func (c *Codec) Verify(token string, flow verification.Flow) (string, error) {
	if c == nil {
		return "", errors.New("flow handoff is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("flow handoff token is required")
	}
	var parsed handoffClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(string(flow)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("verify flow handoff: %w", err)
	}
	if parsed.ID == "" {
		return "", errors.New("flow handoff jti is required")
	}
	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		return "", errors.New("flow handoff subject is required")
	}
	return subject, nil
}

// Write stores the handoff cookie for subject in flow.
func (c *Codec) Write(w http.ResponseWriter, r *http.Request, flow verification.Flow, subject string) error {
	if c == nil || w == nil {
		return nil
	}
	token, err := c.Issue(flow, subject)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(r, flow, token, int(c.ttl.Seconds())))
	return nil
}

// Resolve returns the subject for flow. The signed cookie is used when the
// query parameter is absent or names the same subject. A query parameter
// naming another subject wins and the resolution is marked Superseded.
func (c *Codec) Resolve(r *http.Request, flow verification.Flow) (Resolution, bool) {
	if r == nil {
		return Resolution{}, false
	}
	query := querySubject(r, flow)
	if c != nil {
		if cookie, err := r.Cookie(CookieName(flow)); err == nil {
			if subject, err := c.Verify(cookie.Value, flow); err == nil {
				if query == "" || strings.EqualFold(query, subject) {
					return Resolution{Subject: subject, Source: SourceHandoff}, true
				}
				return Resolution{Subject: query, Source: SourceQuery, Superseded: true}, true
			}
		}
	}
	if query == "" {
		return Resolution{}, false
	}
	return Resolution{Subject: query, Source: SourceQuery}, true
}

// Reconcile resolves the subject for flow and expires a handoff cookie that
// the query parameter superseded.
func (c *Codec) Reconcile(w http.ResponseWriter, r *http.Request, flow verification.Flow) (Resolution, bool) {
	resolution, ok := c.Resolve(r, flow)
	if resolution.Superseded {
		c.Clear(w, r, flow)
	}
	return resolution, ok
}

func querySubject(r *http.Request, flow verification.Flow) string {
	if r.URL == nil {
		return ""
	}
	subject := strings.TrimSpace(r.URL.Query().Get(flow.SubjectParam()))
	if len(subject) > maxSubjectLength {
		return ""
	}
	return subject
}

// Clear expires the handoff cookie for flow.
func (c *Codec) Clear(w http.ResponseWriter, r *http.Request, flow verification.Flow) {
	if c == nil || w == nil {
		return
	}
	http.SetCookie(w, c.cookie(r, flow, "", -1))
}

// Expire clears the handoff cookie for flow when r carries one.
func (c *Codec) Expire(w http.ResponseWriter, r *http.Request, flow verification.Flow) {
	if r == nil {
		return
	}
	if _, err := r.Cookie(CookieName(flow)); err == nil {
		c.Clear(w, r, flow)
	}
}

// ClearAll expires every flow's handoff cookie present on r.
func (c *Codec) ClearAll(w http.ResponseWriter, r *http.Request) {
	for _, flow := range verification.Flows() {
		c.Expire(w, r, flow)
	}
}

func (c *Codec) cookie(r *http.Request, flow verification.Flow, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(flow),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, c.policy),
		SameSite: http.SameSiteLaxMode,
	}
}
