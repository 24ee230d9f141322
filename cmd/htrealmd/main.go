package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/realmkit/htrealm/internal/account"
	"github.com/realmkit/htrealm/internal/auth"
	"github.com/realmkit/htrealm/internal/config"
	"github.com/realmkit/htrealm/internal/htpasswd"
	"github.com/realmkit/htrealm/internal/logger"
	"github.com/realmkit/htrealm/internal/realm"
	"github.com/realmkit/htrealm/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("HTREALM_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Init(cfg.DataDir); err != nil {
		log.Printf("file logging disabled: %v", err)
	}
	defer logger.Close()

	users := account.NewFileStore(cfg.UsersFile)
	if err := users.Ensure(); err != nil {
		log.Fatalf("backing user store %s: %v", cfg.UsersFile, err)
	}
	logger.Info("htpasswd realm backed by %s", cfg.UsersFile)

	creds := htpasswd.NewStore(cfg.HtpasswdFile)
	if err := creds.EnsureFresh(); err != nil {
		logger.Warn("initial credential read: %v", err)
	}
	logger.Info("read %d users from realm file %s", creds.Len(), cfg.HtpasswdFile)

	if cfg.WatchHtpasswd {
		if err := creds.Watch(context.Background()); err != nil {
			logger.Warn("credential watcher unavailable: %v", err)
		}
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret, err = auth.NewRandomSecretB64(32)
		if err != nil {
			log.Fatal(err)
		}
		logger.Warn("no session_secret configured; sessions will not survive restarts")
	}

	rlm := realm.New(users, creds, cfg.OverrideLocalAuthentication)

	srv, err := server.New(cfg, rlm, []byte(secret))
	if err != nil {
		log.Fatal(err)
	}

	logger.Info("htrealmd listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
