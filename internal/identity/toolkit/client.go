// Package toolkit talks to an Identity Toolkit compatible REST API
// (the email/password endpoints used by hosted identity providers).
package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/editorimages/internal/domain"
)

// DefaultTokenURL is the secure token endpoint that exchanges refresh tokens.
const DefaultTokenURL = "https://securetoken.googleapis.com/v1/token"

// Client implements auth.Provider over HTTP.
type Client struct {
	baseURL    string
	tokenURL   string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenURL overrides DefaultTokenURL.
func WithTokenURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.tokenURL = u
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. https://identitytoolkit.googleapis.com/v1).
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenURL:   DefaultTokenURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken"`
	ContinueURL string `json:"continueUrl,omitempty"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
	} `json:"users"`
}

// refreshResponse uses the secure token endpoint's snake_case fields.
type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn implements auth.Provider.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp tokenResponse
	if err := c.call(ctx, "accounts:signInWithPassword", passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return nil, err
	}
	return c.sessionFromToken(resp)
}

// SignUp implements auth.Provider.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp tokenResponse
	if err := c.call(ctx, "accounts:signUp", passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp); err != nil {
		return nil, err
	}
	return c.sessionFromToken(resp)
}

// SendVerification implements auth.Provider.
func (c *Client) SendVerification(ctx context.Context, session *domain.Session, continueURL string) error {
	req := oobRequest{RequestType: "VERIFY_EMAIL", IDToken: session.IDToken, ContinueURL: continueURL}
	return c.call(ctx, "accounts:sendOobCode", req, nil)
}

// Lookup implements auth.Provider.
func (c *Client) Lookup(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	var resp lookupResponse
	if err := c.call(ctx, "accounts:lookup", lookupRequest{IDToken: session.IDToken}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &domain.ProviderError{Code: "USER_NOT_FOUND", Message: "account no longer exists"}
	}

	user := resp.Users[0]
	fresh := *session
	fresh.UserID = user.LocalID
	fresh.Email = user.Email
	fresh.EmailVerified = user.EmailVerified
	return &fresh, nil
}

// Refresh implements auth.Provider.
func (c *Client) Refresh(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session.RefreshToken == "" {
		return nil, &domain.ProviderError{Code: "INVALID_REFRESH_TOKEN", Message: "session has no refresh token"}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {session.RefreshToken},
	}
	var resp refreshResponse
	endpoint := fmt.Sprintf("%s?key=%s", c.tokenURL, c.apiKey)
	if err := c.post(ctx, "token", endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &resp); err != nil {
		return nil, err
	}

	fresh, err := c.sessionFromToken(tokenResponse{
		LocalID:      resp.UserID,
		Email:        session.Email,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	})
	if err != nil {
		return nil, err
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = session.RefreshToken
	}
	return fresh, nil
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, c.apiKey)
	return c.post(ctx, method, endpoint, "application/json", bytes.NewReader(body), out)
}

func (c *Client) post(ctx context.Context, method, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

// parseError turns {"error":{"message":"CODE : detail"}} into a ProviderError.
func parseError(status int, raw []byte) error {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil || er.Error.Message == "" {
		return &domain.ProviderError{
			Code:    "HTTP_" + strconv.Itoa(status),
			Message: fmt.Sprintf("identity provider returned status %d", status),
		}
	}

	code, detail, found := strings.Cut(er.Error.Message, " : ")
	code = strings.TrimSpace(code)
	if !found {
		detail = code
	}
	return &domain.ProviderError{Code: code, Message: strings.TrimSpace(detail)}
}

func (c *Client) sessionFromToken(resp tokenResponse) (*domain.Session, error) {
	session := &domain.Session{
		UserID:       resp.LocalID,
		Email:        resp.Email,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}

	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil {
		session.ExpiresAt = c.now().Add(time.Duration(secs) * time.Second)
	}

	// The provider already authenticated the call; the token is only read
	// for the claims that the sign-in response does not carry.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.IDToken, claims); err == nil {
		if verified, ok := claims["email_verified"].(bool); ok {
			session.EmailVerified = verified
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && session.ExpiresAt.IsZero() {
			session.ExpiresAt = exp.Time
		}
	}

	return session, nil
}
