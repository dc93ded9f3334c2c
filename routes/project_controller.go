package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-nest/app"
	"github.com/mbolis/survey-nest/httpx"
	"github.com/mbolis/survey-nest/log"
	"github.com/mbolis/survey-nest/model"
	"github.com/mbolis/survey-nest/routes/middlewares"
	"github.com/mbolis/survey-nest/store"
)

type titleRequest struct {
	Title string `json:"title"`
}

func ListProjects(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)

		projects := app.Projects.ForOwner(owner)
		render.JSON(w, r, map[string]any{
			"projects": projects,
		})
	}
}

func CreateProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)

		var req titleRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			httpx.LogValidation(w, "project.create.validate",
				"please provide a project title")
			return
		}

		project, err := app.Projects.Create(owner, req.Title)
		if err != nil {
			httpx.LogInternalError(w, "project.create", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, project)
	}
}

func GetProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		project, ok := app.Projects.Get(owner, projectId)
		if !ok {
			httpx.LogNotFound(w, "project.get", projectId)
			return
		}
		render.JSON(w, r, project)
	}
}

func DeleteProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		err := app.Projects.Delete(owner, projectId)
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "project.delete", projectId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "project.delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RenameProject(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		var req titleRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			// a blank title keeps the current one
			if title := strings.TrimSpace(req.Title); title != "" {
				p.Title = title
			}
			return nil
		})
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "project.rename", projectId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "project.rename", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
