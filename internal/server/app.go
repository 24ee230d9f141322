package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/realmkit/htrealm/internal/auth"
	"github.com/realmkit/htrealm/internal/config"
	"github.com/realmkit/htrealm/internal/realm"
)

type App struct {
	secret     []byte
	cookieName string
	cfg        config.Config
	realm      *realm.Realm
	loginPage  *template.Template
	bannerHTML template.HTML
}

func newApp(cfg config.Config, rlm *realm.Realm, secret []byte) (*App, error) {
	tpl, err := template.New("login").Parse(loginPageTemplate)
	if err != nil {
		return nil, err
	}
	return &App{
		secret:     secret,
		cookieName: auth.DefaultCookieName,
		cfg:        cfg,
		realm:      rlm,
		loginPage:  tpl,
		bannerHTML: renderBanner(cfg.LoginBanner),
	}, nil
}

// renderBanner converts the configured login banner markdown to HTML.
func renderBanner(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	_ = goldmark.Convert([]byte(md), &buf)
	return template.HTML(buf.String())
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", a.handleLoginPage)
	mux.HandleFunc("POST /api/login", a.handleLogin)
	mux.HandleFunc("POST /api/logout", a.handleLogout)
	mux.HandleFunc("GET /api/whoami", a.requireAuth(a.handleWhoami))
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	return a.withAuthContext(mux)
}

const loginPageTemplate = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if .Banner}}<div class="banner">{{.Banner}}</div>{{end}}
{{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
<form method="POST" action="/api/login">
	<label>Username: <input type="text" name="username" required></label>
	<label>Password: <input type="password" name="password" required></label>
	<button type="submit">Sign in</button>
</form>
</body>
</html>`
