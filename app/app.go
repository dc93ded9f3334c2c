package app

import (
	"github.com/go-chi/jwtauth"

	"github.com/mbolis/survey-nest/config"
	"github.com/mbolis/survey-nest/store"
)

type App struct {
	Users     *store.Users
	Projects  *store.Projects
	TokenAuth *jwtauth.JWTAuth
	config.Config
}
