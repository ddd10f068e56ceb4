package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/pkg/apperr"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateTTL     = 10 * time.Minute
)

var ErrOAuthDisabled = errors.New("oauth login is not configured")

// GoogleProfile is the subset of the userinfo response we use.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// OAuthService 第三方登录（Google）
type OAuthService interface {
	Enabled() bool
	// AuthCodeURL returns the provider redirect carrying a signed state.
	AuthCodeURL() (string, error)
	// Callback verifies state, exchanges the code and returns the linked user.
	Callback(ctx context.Context, state, code string) (*model.User, error)
	// LinkOrCreate finds the user by Google id, then by email, else creates one.
	LinkOrCreate(ctx context.Context, p GoogleProfile) (*model.User, error)
}

type oauthService struct {
	users       repository.UserRepository
	conf        *oauth2.Config
	secret      []byte
	userInfoURL string
	enabled     bool
}

func NewOAuthService(users repository.UserRepository, cfg config.OAuthConfig) OAuthService {
	return &oauthService{
		users: users,
		conf: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.CallbackURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		secret:      []byte(cfg.StateSecret),
		userInfoURL: googleUserInfoURL,
		enabled:     cfg.Google.Enabled() && cfg.StateSecret != "",
	}
}

func (s *oauthService) Enabled() bool { return s.enabled }

func (s *oauthService) AuthCodeURL() (string, error) {
	if !s.enabled {
		return "", ErrOAuthDisabled
	}
	state, err := s.signState()
	if err != nil {
		return "", apperr.Unexpected("sign oauth state", err)
	}
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *oauthService) signState() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(oauthStateTTL)),
		Subject:   "google",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *oauthService) verifyState(state string) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if claims.Subject != "google" {
		return errors.New("unexpected state subject")
	}
	return nil
}

func (s *oauthService) Callback(ctx context.Context, state, code string) (*model.User, error) {
	if !s.enabled {
		return nil, ErrOAuthDisabled
	}
	if err := s.verifyState(state); err != nil {
		return nil, apperr.Authentication("invalid oauth state")
	}
	if code == "" {
		return nil, apperr.Validation("missing authorization code")
	}
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Authentication("oauth code exchange failed")
	}
	profile, err := s.fetchProfile(ctx, s.conf.Client(ctx, tok))
	if err != nil {
		return nil, apperr.Unexpected("fetch google profile", err)
	}
	return s.LinkOrCreate(ctx, *profile)
}

func (s *oauthService) fetchProfile(ctx context.Context, client *http.Client) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}
	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *oauthService) LinkOrCreate(ctx context.Context, p GoogleProfile) (*model.User, error) {
	if p.ID == "" || p.Email == "" {
		return nil, apperr.Authentication("google profile is incomplete")
	}

	u, err := s.users.GetByGoogleID(ctx, p.ID)
	switch {
	case err == nil:
		return activeOnly(u)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	u, err = s.users.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		if !p.VerifiedEmail {
			return nil, apperr.Authentication("google email is not verified")
		}
		if err := s.users.LinkGoogle(ctx, u.ID, p.ID); err != nil {
			return nil, err
		}
		gid := p.ID
		u.GoogleID = &gid
		return activeOnly(u)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	gid := p.ID
	u = &model.User{
		ID:       uuid.New().String(),
		Email:    p.Email,
		GoogleID: &gid,
		Pseudo:   pseudoFromProfile(p),
		Role:     model.RoleUser,
		IsActive: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("account already exists", nil)
		}
		return nil, err
	}
	return u, nil
}

func activeOnly(u *model.User) (*model.User, error) {
	if !u.IsActive {
		return nil, apperr.Authentication("account is disabled")
	}
	return u, nil
}

func pseudoFromProfile(p GoogleProfile) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(p.Email, "@")
	}
	if utf8.RuneCountInString(name) > MaxPseudoLength {
		name = string([]rune(name)[:MaxPseudoLength])
	}
	return name
}
