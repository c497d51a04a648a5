package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	pkgauth "github.com/spot2go/spot2go-backend/pkg/auth"
	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
	code  string
}

func (f *fakeExchanger) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func (f *fakeExchanger) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.google.test/auth?state=" + state
}

type staticAppleKeys struct {
	key *rsa.PublicKey
}

func (s *staticAppleKeys) Key(_ context.Context, _ string) (*rsa.PublicKey, error) {
	return s.key, nil
}

func googleTestConfig() config.GoogleOAuthConfig {
	return config.GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:8080/api/auth/google/callback",
	}
}

func buildOAuthService(t *testing.T, repo *fakeUserRepo, opts OAuthServiceParams) OAuthService {
	t.Helper()
	opts.UserRepo = repo
	opts.JWTConfig = testJWTConfig()
	opts.Logger = logger.New(logger.Options{ServiceName: "test"})
	if opts.Google == (config.GoogleOAuthConfig{}) {
		opts.Google = googleTestConfig()
	}
	svc, err := NewOAuthService(opts)
	if err != nil {
		t.Fatalf("build oauth service: %v", err)
	}
	return svc
}

func TestGoogleCallbackCreatesCustomer(t *testing.T) {
	userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer google-access" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"google-sub-1","email":"New@Example.com","name":"New Person"}`))
	}))
	defer userInfo.Close()

	repo := newFakeUserRepo()
	svc := buildOAuthService(t, repo, OAuthServiceParams{
		GoogleExchanger: &fakeExchanger{token: &oauth2.Token{AccessToken: "google-access"}},
		UserInfoURL:     userInfo.URL,
		HTTPClient:      userInfo.Client(),
	})

	resp, err := svc.HandleGoogleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("google callback: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", claims.Role)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Provider != enums.AuthProviderGoogle || created.ProviderID == nil || *created.ProviderID != "google-sub-1" {
		t.Fatalf("expected google identity on created user")
	}
	if created.Email == nil || *created.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %v", created.Email)
	}
}

func TestGoogleCallbackLinksExistingEmail(t *testing.T) {
	userInfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"sub":"google-sub-2","email":"kim@example.com","name":"Kim"}`))
	}))
	defer userInfo.Close()

	repo := newFakeUserRepo()
	existing := &models.User{
		Email:    strPtr("kim@example.com"),
		Name:     "Kim",
		Role:     enums.UserRoleOwner,
		Provider: enums.AuthProviderLocal,
	}
	repo.byEmail["kim@example.com"] = existing

	svc := buildOAuthService(t, repo, OAuthServiceParams{
		GoogleExchanger: &fakeExchanger{token: &oauth2.Token{AccessToken: "tok"}},
		UserInfoURL:     userInfo.URL,
		HTTPClient:      userInfo.Client(),
	})

	resp, err := svc.HandleGoogleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("google callback: %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no new user, got %d", len(repo.created))
	}
	if len(repo.linked) != 1 {
		t.Fatalf("expected provider link, got %d", len(repo.linked))
	}
	if resp.User.Role != enums.UserRoleOwner {
		t.Fatalf("expected existing owner account, got %s", resp.User.Role)
	}
}

func TestGoogleCallbackExchangeFailure(t *testing.T) {
	svc := buildOAuthService(t, newFakeUserRepo(), OAuthServiceParams{
		GoogleExchanger: &fakeExchanger{err: context.DeadlineExceeded},
		UserInfoURL:     "http://localhost:0",
		HTTPClient:      http.DefaultClient,
	})

	_, err := svc.HandleGoogleCallback(context.Background(), "bad-code")
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func mintAppleIDToken(t *testing.T, key *rsa.PrivateKey, clientID, sub, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":   appleIssuer,
		"aud":   clientID,
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-kid"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign id_token: %v", err)
	}
	return signed
}

func TestAppleCallbackCreatesCustomer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	repo := newFakeUserRepo()
	svc := buildOAuthService(t, repo, OAuthServiceParams{
		Apple:      config.AppleOAuthConfig{ClientID: "app.spot2go.client"},
		AppleKeys:  &staticAppleKeys{key: &key.PublicKey},
		HTTPClient: http.DefaultClient,
	})

	idToken := mintAppleIDToken(t, key, "app.spot2go.client", "apple-sub-1", "apple@example.com")
	resp, err := svc.HandleAppleCallback(context.Background(), idToken, `{"name":{"firstName":"Ada","lastName":"Lovelace"}}`)
	if err != nil {
		t.Fatalf("apple callback: %v", err)
	}
	if resp.User.Name != "Ada Lovelace" {
		t.Fatalf("expected name from first-auth payload, got %q", resp.User.Name)
	}
	if len(repo.created) != 1 || repo.created[0].Provider != enums.AuthProviderApple {
		t.Fatalf("expected apple user created")
	}
}

func TestAppleCallbackRejectsWrongAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	svc := buildOAuthService(t, newFakeUserRepo(), OAuthServiceParams{
		Apple:      config.AppleOAuthConfig{ClientID: "app.spot2go.client"},
		AppleKeys:  &staticAppleKeys{key: &key.PublicKey},
		HTTPClient: http.DefaultClient,
	})

	idToken := mintAppleIDToken(t, key, "someone.else", "apple-sub-2", "apple@example.com")
	_, err = svc.HandleAppleCallback(context.Background(), idToken, "")
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}
