package routes

import (
	"fmt"
	"net/http"

	"github.com/alleghenyre/propsearch/internal/auth"
	"github.com/alleghenyre/propsearch/internal/export"
	"github.com/alleghenyre/propsearch/internal/importer"
	"github.com/alleghenyre/propsearch/internal/middleware"
	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	DB             *gorm.DB
	Hosted         property.Store
	Local          property.Store
	Runner         *importer.Runner
	AllowedOrigins []string
	SecureCookies  bool
	Log            *zap.Logger
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

// NewRouter builds the full route tree.
func NewRouter(d Deps) *chi.Mux {
	fetcher := auth.SessionInfo{DB: d.DB}
	session := middleware.SessionMiddleware(fetcher)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	r.Get("/", RootHandler)
	r.Mount("/auth", auth.SetupRoutes(auth.NewHandler(d.DB, d.SecureCookies, d.Log), fetcher))

	imports := importer.NewHandler(d.Runner, d.Hosted.Name(), d.Log)

	r.Route("/properties", func(r chi.Router) {
		r.Use(session)
		mountStore(r, d.Hosted, d.Log)
	})

	r.Route("/local", func(r chi.Router) {
		r.Use(session)
		mountStore(r, d.Local, d.Log)
		r.With(middleware.AdminMiddleware).Post("/populate", imports.PopulateStore(d.Local.Name()))
	})

	r.Route("/import", func(r chi.Router) {
		r.Use(session, middleware.AdminMiddleware)
		imports.Register(r)
	})

	return r
}

func mountStore(r chi.Router, s property.Store, log *zap.Logger) {
	export.NewHandler(s, log).Register(r)
	property.NewHandler(s, log).Register(r)
}
