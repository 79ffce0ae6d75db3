package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"housy-backend/internal/shared/server/respond"
	"housy-backend/internal/shared/telemetry"
	"housy-backend/internal/users"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	maxUserInfoBytes  = 1 << 16
)

var errIncompleteProfile = errors.New("google profile has no subject or email")

// GoogleConfig holds the OAuth client registration and where the UI expects
// to receive the issued token.
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	UIRedirectURL string
}

// GoogleService signs users in through Google. The Google identity is mapped
// to a local client account and the UI receives a housy token, never the
// Google one.
type GoogleService struct {
	oauth       *oauth2.Config
	uiRedirect  string
	states      *oauthStates
	users       *users.Service
	tokens      TokenIssuer
	userInfoURL string
}

func NewGoogleService(cfg GoogleConfig, svc *users.Service, tokens TokenIssuer) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		uiRedirect:  cfg.UIRedirectURL,
		states:      newOAuthStates(nil),
		users:       svc,
		tokens:      tokens,
		userInfoURL: googleUserInfoURL,
	}
}

// RegisterRoutes attaches the public Google sign-in routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != "" && s.oauth.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}
	target := s.oauth.AuthCodeURL(s.states.issue(), oauth2.SetAuthURLParam("prompt", "select_account"))
	c.Redirect(http.StatusFound, target)
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.redeem(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	googleToken, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	profile, err := s.profile(ctx, googleToken)
	if err != nil {
		telemetry.Warn("google profile fetch failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	user, err := s.users.UpsertOAuth(ctx, profile.Email, profile.Name)
	if err != nil {
		telemetry.Error("google sign-in upsert failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load account", nil)
		return
	}

	accessToken, err := s.tokens.Sign(user.ID, user.Role, user.Email)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	dest, err := appendToken(s.uiRedirect, accessToken)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, dest)
}

type googleProfile struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// profile reads the signed-in Google account. The v2 endpoint reports the
// subject as "id"; the OIDC one as "sub".
func (s *GoogleService) profile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Sub == "" {
		p.Sub = p.ID
	}
	if p.Sub == "" || strings.TrimSpace(p.Email) == "" {
		return googleProfile{}, errIncompleteProfile
	}
	return p, nil
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
