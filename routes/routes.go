package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/survey-nest/app"
	"github.com/mbolis/survey-nest/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/signup", Signup(app))
	api.Post("/login", Login(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Auth(app.TokenAuth))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", ListProjects(app))
			r.Post("/", CreateProject(app))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", GetProject(app))
				r.Delete("/", DeleteProject(app))
				r.Put("/title", RenameProject(app))

				// form designer
				r.Post("/questions", AddQuestion(app))
				r.Delete("/questions", ClearQuestions(app))
				r.Post(`/questions/{n:^\d+$}/move`, MoveQuestion(app))
				r.Delete(`/questions/{n:^\d+$}`, DeleteQuestion(app))
				r.Get("/form/export", ExportForm(app))
				r.Post("/form/import", ImportForm(app))

				// collected data
				r.Post("/records", SubmitRecord(app))
				r.Get("/records", ListRecords(app))
				r.Delete(`/records/{n:^\d+$}`, DeleteRecord(app))
				r.Get("/records/export", ExportRecords(app))
			})
		})
	})

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
