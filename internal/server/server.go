package server

import (
	"net/http"
	"time"

	"github.com/realmkit/htrealm/internal/config"
	"github.com/realmkit/htrealm/internal/realm"
)

type Server struct {
	cfg config.Config
	h   http.Handler
}

func New(cfg config.Config, rlm *realm.Realm, secret []byte) (*Server, error) {
	app, err := newApp(cfg, rlm, secret)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, h: app.routes()}, nil
}

func (s *Server) Handler() http.Handler { return s.h }

func (s *Server) ListenAndServe() error {
	httpSrv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
