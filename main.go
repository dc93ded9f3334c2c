package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/mbolis/survey-nest/app"
	"github.com/mbolis/survey-nest/config"
	"github.com/mbolis/survey-nest/log"
	"github.com/mbolis/survey-nest/routes"
	"github.com/mbolis/survey-nest/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	app := app.App{
		Users:     store.NewUsers(cfg.UsersFile()),
		Projects:  store.OpenProjects(cfg.ProjectsFile()),
		TokenAuth: jwtauth.New("HS256", []byte(cfg.TokenSecret), nil),
		Config:    cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
