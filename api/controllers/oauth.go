package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/api/responses"
	"github.com/spot2go/spot2go-backend/internal/auth"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

const oauthStateCookie = "s2g_oauth_state"

// AuthGoogleRedirect starts the Google flow. The state nonce rides along in
// an HttpOnly cookie and is checked on the way back.
func AuthGoogleRedirect(svc auth.OAuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oauth service unavailable"))
			return
		}

		state := uuid.NewString()
		authURL, err := svc.GoogleAuthURL(state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/api/auth",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// AuthGoogleCallback finishes the flow and hands the session token to the
// frontend via redirect.
func AuthGoogleCallback(svc auth.OAuthService, frontendURL string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oauth service unavailable"))
			return
		}

		if reason := r.URL.Query().Get("error"); reason != "" {
			redirectWithError(w, r, frontendURL, reason)
			return
		}

		state := r.URL.Query().Get("state")
		cookie, err := r.Cookie(oauthStateCookie)
		if err != nil || state == "" || cookie.Value != state {
			redirectWithError(w, r, frontendURL, "state_mismatch")
			return
		}
		clearStateCookie(w)

		code := r.URL.Query().Get("code")
		if code == "" {
			redirectWithError(w, r, frontendURL, "missing_code")
			return
		}

		result, err := svc.HandleGoogleCallback(r.Context(), code)
		if err != nil {
			logg.Error(r.Context(), "google callback failed", err)
			redirectWithError(w, r, frontendURL, "oauth_failed")
			return
		}
		redirectWithToken(w, r, frontendURL, result.Token)
	}
}

// AuthAppleCallback receives Apple's form_post response. The optional user
// field only arrives on the first authorization.
func AuthAppleCallback(svc auth.OAuthService, frontendURL string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oauth service unavailable"))
			return
		}

		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, frontendURL, "invalid_form")
			return
		}
		if reason := r.PostFormValue("error"); reason != "" {
			redirectWithError(w, r, frontendURL, reason)
			return
		}

		idToken := r.PostFormValue("id_token")
		if idToken == "" {
			redirectWithError(w, r, frontendURL, "missing_id_token")
			return
		}

		result, err := svc.HandleAppleCallback(r.Context(), idToken, r.PostFormValue("user"))
		if err != nil {
			logg.Error(r.Context(), "apple callback failed", err)
			redirectWithError(w, r, frontendURL, "oauth_failed")
			return
		}
		redirectWithToken(w, r, frontendURL, result.Token)
	}
}

func redirectWithToken(w http.ResponseWriter, r *http.Request, frontendURL, token string) {
	target := frontendURL + "/auth/callback?token=" + url.QueryEscape(token)
	http.Redirect(w, r, target, http.StatusFound)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, frontendURL, reason string) {
	target := frontendURL + "/auth/callback?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusFound)
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
