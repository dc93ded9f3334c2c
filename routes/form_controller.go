package routes

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/mbolis/survey-nest/app"
	"github.com/mbolis/survey-nest/httpx"
	"github.com/mbolis/survey-nest/log"
	"github.com/mbolis/survey-nest/model"
	"github.com/mbolis/survey-nest/routes/middlewares"
	"github.com/mbolis/survey-nest/store"
	"github.com/mbolis/survey-nest/xlsform"
)

// maxImportSize caps uploaded XLSForm workbooks at 10MB.
const maxImportSize = 10 << 20

var errPosition = errors.New("position out of range")

type questionRequest struct {
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Choices  []string `json:"choices"`
	Required bool     `json:"required"`
}

func AddQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		var req questionRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		req.Label = strings.TrimSpace(req.Label)
		if req.Label == "" {
			httpx.LogValidation(w, "question.add.validate",
				"question label is required")
			return
		}
		if !model.ValidType(req.Type) {
			httpx.LogValidation(w, "question.add.validate",
				"unknown question type %q", req.Type)
			return
		}

		choices := []string{}
		if model.HasChoices(req.Type) {
			for _, c := range req.Choices {
				if c = strings.TrimSpace(c); c != "" {
					choices = append(choices, c)
				}
			}
		}

		var question model.Question
		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			question = model.Question{
				ID:       model.NewQuestionID(),
				Name:     model.DeriveName(p.Form, req.Label, req.Name),
				Label:    req.Label,
				Type:     req.Type,
				Choices:  choices,
				Required: req.Required,
			}
			p.Form = append(p.Form, question)
			return nil
		})
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "question.add", projectId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "question.add", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func MoveQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		n, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.n")
			return
		}

		var req struct {
			Direction string `json:"direction"`
		}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Direction != "up" && req.Direction != "down" {
			httpx.LogValidation(w, "question.move.validate",
				"direction must be \"up\" or \"down\"")
			return
		}

		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			if n < 1 || n > len(p.Form) {
				return errPosition
			}
			i := n - 1
			// moving past either end is a no-op
			if req.Direction == "up" && i > 0 {
				p.Form[i-1], p.Form[i] = p.Form[i], p.Form[i-1]
			}
			if req.Direction == "down" && i < len(p.Form)-1 {
				p.Form[i+1], p.Form[i] = p.Form[i], p.Form[i+1]
			}
			return nil
		})
		respondUpdate(w, "question.move", projectId, n, err)
	}
}

func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		n, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.n")
			return
		}

		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			if n < 1 || n > len(p.Form) {
				return errPosition
			}
			p.Form = append(p.Form[:n-1], p.Form[n:]...)
			return nil
		})
		respondUpdate(w, "question.delete", projectId, n, err)
	}
}

// ClearQuestions empties the form and the collected data with it: records
// keyed by removed questions would be unreachable anyway.
func ClearQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		err := app.Projects.Update(owner, projectId, func(p *model.Project) error {
			p.Form = []model.Question{}
			p.Data = []model.Record{}
			return nil
		})
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "question.clear", projectId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "question.clear", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ExportForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		project, ok := app.Projects.Get(owner, projectId)
		if !ok {
			httpx.LogNotFound(w, "form.export", projectId)
			return
		}

		workbook, err := xlsform.Export(project.Form)
		if err != nil {
			httpx.LogInternalError(w, "form.export", err)
			return
		}

		sendAttachment(w, project.Title+"_xlsform.xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
	}
}

func ImportForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.Username(r)
		projectId := chi.URLParam(r, "id")

		body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.read_body")
			return
		}

		questions, err := xlsform.Import(body)
		if err != nil {
			httpx.LogValidation(w, "form.import",
				"error importing XLSForm: %s", err)
			return
		}

		err = app.Projects.Update(owner, projectId, func(p *model.Project) error {
			p.Form = append(p.Form, questions...)
			return nil
		})
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "form.import", projectId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "form.import", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"imported": len(questions),
		})
	}
}

func respondUpdate(w http.ResponseWriter, code, projectId string, n int, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case err == store.ErrNotFound:
		httpx.LogNotFound(w, code, projectId)
	case errors.Is(err, errPosition):
		httpx.LogValidation(w, code,
			"position %d is out of range", n)
	default:
		httpx.LogInternalError(w, code, err)
	}
}

func sendAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("content-type", contentType)
	w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(body)
}
