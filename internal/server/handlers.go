package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/realmkit/htrealm/internal/auth"
	"github.com/realmkit/htrealm/internal/logger"
)

var errMissingCredentials = errors.New("username and password required")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func (a *App) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Banner template.HTML
		Flash  string
	}{Banner: a.bannerHTML, Flash: r.URL.Query().Get("flash")}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.loginPage.Execute(w, data); err != nil {
		logger.Error("rendering login page: %v", err)
	}
}

// handleLogin accepts form-encoded or JSON credentials and issues a session
// cookie on success. Failures are uniform: no hint about which factor failed.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, err := parseCredentials(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "username and password required")
		return
	}

	rec, err := a.realm.Authenticate(username, password)
	if err != nil {
		logger.Error("authenticate %q: %v", username, err)
		rec = nil
	}
	if rec == nil {
		logger.Info("failed login for %q from %s", username, r.RemoteAddr)
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	external := rec.IsExternal()
	tok, err := auth.SignHS256(a.secret, rec.Username, external, a.cfg.SessionTTL.Std())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not issue session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(a.cfg.SessionTTL.Std()),
	})

	logger.Info("login for %q (external=%t) from %s", rec.Username, external, r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]any{
		"username":     rec.Username,
		"external":     external,
		"display_name": rec.DisplayName,
		"roles":        rec.Roles,
	})
}

func parseCredentials(r *http.Request) (string, string, error) {
	var username, password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", "", err
		}
		username, password = body.Username, body.Password
	} else {
		if err := r.ParseForm(); err != nil {
			return "", "", err
		}
		username = r.FormValue("username")
		password = r.FormValue("password")
	}
	if username == "" || password == "" {
		return "", "", errMissingCredentials
	}
	return username, password, nil
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *App) handleWhoami(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"username": usernameFrom(r),
		"external": isExternalFrom(r),
	})
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"entries": a.realm.CredentialStore().Len(),
	})
}
