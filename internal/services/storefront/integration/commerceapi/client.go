// Package commerceapi is the storefront's client for the remote commerce API.
//
// Every call is JSON over HTTP. The customer's opaque API credential rides
// on the request context and is forwarded as the API's session cookie.
package commerceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/anvistudio/storefront/internal/platform/timeouts"
	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
)

const (
	// DefaultSessionCookie is the commerce API's session cookie name.
	DefaultSessionCookie = "JSESSIONID"
	maxResponseBytes     = 1 << 20
	userAgent            = "anvistudio-storefront"
	requestIDHeader      = "X-Request-ID"
	tracerName           = "github.com/anvistudio/storefront/internal/services/storefront/integration/commerceapi"
)

type credentialKey struct{}
type requestIDKey struct{}

// WithCredential returns ctx carrying the customer's API credential.
func WithCredential(ctx context.Context, credential string) context.Context {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, credential)
}

// CredentialFrom returns the API credential carried by ctx.
func CredentialFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	credential, _ := ctx.Value(credentialKey{}).(string)
	return credential
}

// WithRequestID returns ctx carrying a correlation id forwarded to the API.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" || requestID == "-" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// Config configures a Client.
type Config struct {
	BaseURL       string
	SessionCookie string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Client calls the commerce API.
type Client struct {
	baseURL       *url.URL
	sessionCookie string
	http          *http.Client
	tracer        trace.Tracer
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("commerce api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse commerce api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("commerce api base url must be http or https, got %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("commerce api base url host is required")
	}
	cookieName := strings.TrimSpace(cfg.SessionCookie)
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = timeouts.APIRequest
		}
		httpClient = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Client{
		baseURL:       base,
		sessionCookie: cookieName,
		http:          httpClient,
		tracer:        otel.Tracer(tracerName),
	}, nil
}

// envelope is the union of fields the commerce API puts in its JSON replies.
type envelope struct {
	Success              *bool        `json:"success"`
	Message              string       `json:"message"`
	Email                string       `json:"email"`
	NewEmail             string       `json:"newEmail"`
	RequiresLogout       bool         `json:"requiresLogout"`
	RequiresVerification bool         `json:"requiresVerification"`
	Authenticated        bool         `json:"authenticated"`
	User                 *userPayload `json:"user"`
	Customer             *Customer    `json:"customer"`
}

type userPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *userPayload) toUser() *User {
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return nil
	}
	role := strings.TrimSpace(u.Role)
	if role == "" {
		role = "CUSTOMER"
	}
	return &User{Email: strings.TrimSpace(u.Email), Role: role}
}

// response is one decoded API reply.
type response struct {
	status  int
	body    envelope
	cookies []*http.Cookie
}

func (r response) succeeded() bool {
	return r.status >= 200 && r.status < 300 && (r.body.Success == nil || *r.body.Success)
}

// exchange performs one API call and decodes its JSON envelope. Only
// transport and decoding failures are returned as errors; callers classify
// the status themselves.
func (c *Client) exchange(ctx context.Context, operation string, method string, path string, payload any) (response, error) {
	if c == nil {
		return response{}, apperrors.E(apperrors.KindUnavailable, "commerce api client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, "commerceapi."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	resp, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return response{}, apperrors.Wrap(apperrors.KindUnavailable, "commerce api "+operation+" failed", err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.status))
	if resp.status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(resp.status))
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, path string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential := CredentialFrom(ctx); credential != "" {
		req.AddCookie(&http.Cookie{Name: c.sessionCookie, Value: credential})
	}
	if requestID := requestIDFrom(ctx); requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}
	decoded := response{status: resp.StatusCode, cookies: resp.Cookies()}
	if len(bytes.TrimSpace(raw)) == 0 {
		return decoded, nil
	}
	if err := json.Unmarshal(raw, &decoded.body); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return response{}, fmt.Errorf("decode response: %w", err)
		}
		// Error pages from proxies are not JSON; the status alone classifies them.
		decoded.body = envelope{}
	}
	return decoded, nil
}

// classify maps a non-successful reply onto the storefront error taxonomy.
// Business-rule rejections keep the API's message so it can be shown verbatim.
func classify(operation string, resp response) error {
	message := strings.TrimSpace(resp.body.Message)
	switch {
	case resp.status == http.StatusUnauthorized:
		return apperrors.EK(apperrors.KindUnauthorized, "error.session_expired", "commerce api "+operation+": unauthorized")
	case resp.status == http.StatusForbidden:
		return apperrors.EK(apperrors.KindForbidden, "error.forbidden", "commerce api "+operation+": forbidden")
	case resp.status >= http.StatusInternalServerError:
		return apperrors.EK(apperrors.KindUnavailable, "error.try_again", fmt.Sprintf("commerce api %s: status %d", operation, resp.status))
	case resp.status == http.StatusNotFound && message == "":
		return apperrors.EK(apperrors.KindNotFound, "error.not_found", "commerce api "+operation+": not found")
	}
	kind := apperrors.KindInvalidInput
	if resp.status == http.StatusConflict {
		kind = apperrors.KindConflict
	}
	if message == "" {
		return apperrors.EK(kind, "error.request_rejected", fmt.Sprintf("commerce api %s: status %d", operation, resp.status))
	}
	return apperrors.E(kind, message)
}

// send performs a call whose only interesting outcome is success or a
// classified failure.
func (c *Client) send(ctx context.Context, operation string, method string, path string, payload any) (response, error) {
	resp, err := c.exchange(ctx, operation, method, path, payload)
	if err != nil {
		return response{}, err
	}
	if !resp.succeeded() {
		return response{}, classify(operation, resp)
	}
	return resp, nil
}
