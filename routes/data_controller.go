package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-nest/app"
	"github.com/mbolis/survey-nest/httpx"
	"github.com/mbolis/survey-nest/log"
	"github.com/mbolis/survey-nest/model"
	"github.com/mbolis/survey-nest/routes/middlewares"
	"github.com/mbolis/survey-nest/store"
	"github.com/mbolis/survey-nest/tabular"
)

type submitRequest struct {
	Values map[string]model.Value `json:"values"`
}

func SubmitRecord(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		var req submitRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		var record model.Record
		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			record, err = p.Submit(req.Values, time.Now())
			return err
		})
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "record.submit", projectId)
			return
		}
		if missing, ok := err.(model.MissingRequiredError); ok {
			httpx.LogValidation(w, "record.submit.required",
				"%s", missing.Error())
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "record.submit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, record)
	}
}

func ListRecords(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		project, ok := app.Projects.Get(owner, projectId)
		if !ok {
			httpx.LogNotFound(w, "record.list", projectId)
			return
		}

		render.JSON(w, r, map[string]any{
			"columns": tabular.Columns(project.Data),
			"records": project.Data,
		})
	}
}

func DeleteRecord(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		n, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.n")
			return
		}

		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			if n < 1 || n > len(p.Data) {
				return errPosition
			}
			p.Data = append(p.Data[:n-1], p.Data[n:]...)
			return nil
		})
		respondUpdate(w, "record.delete", projectId, n, err)
	}
}

func ExportRecords(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		project, ok := app.Projects.Get(owner, projectId)
		if !ok {
			httpx.LogNotFound(w, "record.export", projectId)
			return
		}

		switch format := r.URL.Query().Get("format"); format {
		case "", "csv":
			body, err := tabular.CSV(project.Data)
			if err != nil {
				httpx.LogInternalError(w, "record.export.csv", err)
				return
			}
			sendAttachment(w, project.Title+"_data.csv", "text/csv", body)
		case "xlsx":
			body, err := tabular.XLSX(project.Data)
			if err != nil {
				httpx.LogInternalError(w, "record.export.xlsx", err)
				return
			}
			sendAttachment(w, project.Title+"_data.xlsx",
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
		default:
			httpx.LogValidation(w, "record.export.format",
				"unknown export format %q", format)
		}
	}
}
