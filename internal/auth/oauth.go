package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/users"
	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// OAuthService handles the Google code flow and Apple id_token callback.
// Both flows end in a minted first-party access token.
type OAuthService interface {
	GoogleAuthURL(state string) (string, error)
	HandleGoogleCallback(ctx context.Context, code string) (*TokenResponse, error)
	HandleAppleCallback(ctx context.Context, idToken, rawUser string) (*TokenResponse, error)
}

type oauthUserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByProviderIdentity(ctx context.Context, provider enums.AuthProvider, providerID string) (*models.User, error)
	LinkProvider(ctx context.Context, id uuid.UUID, provider enums.AuthProvider, providerID string) error
}

type codeExchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
}

type oauthService struct {
	users       oauthUserRepository
	jwtCfg      config.JWTConfig
	googleCfg   config.GoogleOAuthConfig
	google      codeExchanger
	userInfoURL string
	httpClient  *http.Client
	appleKeys   appleKeyResolver
	appleCfg    config.AppleOAuthConfig
	logg        *logger.Logger
}

// OAuthServiceParams bundles the dependencies for the OAuth flows.
type OAuthServiceParams struct {
	UserRepo  oauthUserRepository
	JWTConfig config.JWTConfig
	Google    config.GoogleOAuthConfig
	Apple     config.AppleOAuthConfig
	Logger    *logger.Logger

	// Overridable in tests.
	GoogleExchanger codeExchanger
	UserInfoURL     string
	HTTPClient      *http.Client
	AppleKeys       appleKeyResolver
}

// NewOAuthService wires the Google code flow and the Apple JWKS verifier.
func NewOAuthService(params OAuthServiceParams) (OAuthService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	exchanger := params.GoogleExchanger
	if exchanger == nil {
		exchanger = &oauth2.Config{
			ClientID:     params.Google.ClientID,
			ClientSecret: params.Google.ClientSecret,
			RedirectURL:  params.Google.CallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	userInfoURL := params.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	keys := params.AppleKeys
	if keys == nil {
		keys = newAppleKeySet(params.Apple.JWKSURL, httpClient)
	}

	return &oauthService{
		users:       params.UserRepo,
		jwtCfg:      params.JWTConfig,
		googleCfg:   params.Google,
		google:      exchanger,
		userInfoURL: userInfoURL,
		httpClient:  httpClient,
		appleKeys:   keys,
		appleCfg:    params.Apple,
		logg:        params.Logger,
	}, nil
}

func (s *oauthService) GoogleAuthURL(state string) (string, error) {
	if !s.googleCfg.Enabled() {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "google login is not configured")
	}
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *oauthService) HandleGoogleCallback(ctx context.Context, code string) (*TokenResponse, error) {
	if !s.googleCfg.Enabled() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google login is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorization code is required")
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "google code exchange failed")
	}
	info, err := s.fetchGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google profile has no subject")
	}

	user, err := s.findOrCreate(ctx, enums.AuthProviderGoogle, info.Sub, info.Email, info.Name)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *oauthService) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build userinfo request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch google userinfo")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read google userinfo")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google rejected the access token")
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode google userinfo")
	}
	return &info, nil
}

// appleUserPayload is the optional `user` form field Apple posts on the
// first authorization only.
type appleUserPayload struct {
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
}

func (s *oauthService) HandleAppleCallback(ctx context.Context, idToken, rawUser string) (*TokenResponse, error) {
	if !s.appleCfg.Enabled() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "apple login is not configured")
	}
	claims, err := verifyAppleIDToken(ctx, s.appleKeys, s.appleCfg.ClientID, idToken)
	if err != nil {
		return nil, err
	}

	name := ""
	if rawUser != "" {
		var payload appleUserPayload
		if err := json.Unmarshal([]byte(rawUser), &payload); err == nil {
			name = strings.TrimSpace(payload.Name.FirstName + " " + payload.Name.LastName)
		}
	}

	user, err := s.findOrCreate(ctx, enums.AuthProviderApple, claims.Subject, claims.Email, name)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// findOrCreate resolves an OAuth identity to an account: match on the
// provider identity first, then link by email, then create a new customer.
func (s *oauthService) findOrCreate(ctx context.Context, provider enums.AuthProvider, providerID, email, name string) (*models.User, error) {
	user, err := s.users.FindByProviderIdentity(ctx, provider, providerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup provider identity")
	}

	normalized := normalizeEmail(email)
	if normalized != "" {
		existing, err := s.users.FindByEmail(ctx, normalized)
		if err == nil {
			if err := s.users.LinkProvider(ctx, existing.ID, provider, providerID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link provider")
			}
			existing.Provider = provider
			existing.ProviderID = &providerID
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by email")
		}
	}

	if name == "" {
		name = fallbackName(normalized, provider)
	}
	created := &models.User{
		Name:       name,
		Role:       enums.UserRoleCustomer,
		Provider:   provider,
		ProviderID: &providerID,
	}
	if normalized != "" {
		created.Email = &normalized
	}
	if _, err := s.users.Create(ctx, created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create oauth user")
	}
	return created, nil
}

func (s *oauthService) issue(user *models.User) (*TokenResponse, error) {
	token, err := mintToken(s.jwtCfg, user)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, User: users.FromModel(user)}, nil
}

func fallbackName(email string, provider enums.AuthProvider) string {
	if email != "" {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
	}
	return string(provider) + " user"
}
