package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-nest/app"
	"github.com/mbolis/survey-nest/httpx"
	"github.com/mbolis/survey-nest/log"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Signup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			httpx.LogValidation(w, "signup.validate",
				"provide username and password")
			return
		}

		ok, err := app.Users.Register(req.Username, req.Password)
		if err != nil {
			httpx.LogInternalError(w, "users.register", err)
			return
		}
		if !ok {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "signup.taken",
				"username already exists")
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"username": req.Username,
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		authenticated, err := app.Users.Authenticate(user, pass)
		if err != nil {
			httpx.LogInternalError(w, "users.authenticate", err)
			return
		}
		if !authenticated {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.credentials")
			return
		}

		claims := map[string]any{"username": user}
		jwtauth.SetIssuedNow(claims)
		jwtauth.SetExpiryIn(claims, app.TokenTTL)

		_, token, err := app.TokenAuth.Encode(claims)
		if err != nil {
			httpx.LogInternalError(w, "login.token.encode", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(app.TokenTTL.Seconds()),
		})
	}
}
