package portal

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/diillson/led-sales-tracker-go/pkg/logger"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// SavedMessage is the body returned once the credentials are stored.
const SavedMessage = "Credentials saved. Rebooting..."

// Env keys written by the portal.
const (
	KeyWifiSSID     = "WIFI_SSID"
	KeyWifiPass     = "WIFI_PASS"
	KeyAppID        = "LED_SALES_APP_ID"
	KeyAppSecret    = "LED_SALES_APP_SECRET"
	KeyRefreshToken = "LED_SALES_REFRESH_TOKEN"
)

type Params struct {
	Store  repository.CredentialStore
	Logger *logger.Logger
	// OnSaved runs after a successful save, once the response is written.
	OnSaved func()
}

// Server é o portal cativo do primeiro boot.
type Server struct {
	store    repository.CredentialStore
	logg     *logger.Logger
	onSaved  func()
	validate *validator.Validate
	router   chi.Router
}

func NewServer(params Params) (*Server, error) {
	if params.Store == nil {
		return nil, errors.New("credential store required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	s := &Server{
		store:    params.Store,
		logg:     params.Logger,
		onSaved:  params.OnSaved,
		validate: newValidator(),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleForm)
	r.Post("/", s.handleSubmit)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		ctx := s.logg.WithFields(r.Context(), map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		s.logg.Debug(ctx, "portal request")
	})
}

type formField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Error    string
	Required bool
}

type formView struct {
	Fields []formField
}

func newFormView(sub entity.PortalSubmission, errs map[string]string) formView {
	return formView{Fields: []formField{
		{Name: "ssid", Label: "Wi-Fi network", Type: "text", Value: sub.SSID, Error: errs["ssid"], Required: true},
		// Senhas e segredos nunca voltam para o formulário.
		{Name: "password", Label: "Wi-Fi password", Type: "password", Error: errs["password"]},
		{Name: "amazon_id", Label: "SP-API app client ID", Type: "text", Value: sub.AppID, Error: errs["amazon_id"], Required: true},
		{Name: "amazon_secret", Label: "SP-API app client secret", Type: "password", Error: errs["amazon_secret"], Required: true},
		{Name: "refresh", Label: "Refresh token", Type: "password", Error: errs["refresh"], Required: true},
	}}
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, newFormView(entity.PortalSubmission{}, nil))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sub := entity.PortalSubmission{
		SSID:         strings.TrimSpace(r.PostForm.Get("ssid")),
		Password:     r.PostForm.Get("password"),
		AppID:        strings.TrimSpace(r.PostForm.Get("amazon_id")),
		AppSecret:    strings.TrimSpace(r.PostForm.Get("amazon_secret")),
		RefreshToken: strings.TrimSpace(r.PostForm.Get("refresh")),
	}

	if err := s.validate.Struct(sub); err != nil {
		errs := fieldErrors(err)
		s.logg.Warn(s.logg.WithField(ctx, "fields", errs), "portal submission rejected")
		s.render(w, r, http.StatusBadRequest, newFormView(sub, errs))
		return
	}

	if err := s.store.Save(map[string]string{
		KeyWifiSSID:     sub.SSID,
		KeyWifiPass:     sub.Password,
		KeyAppID:        sub.AppID,
		KeyAppSecret:    sub.AppSecret,
		KeyRefreshToken: sub.RefreshToken,
	}); err != nil {
		s.logg.Error(ctx, "failed to save credentials", err)
		http.Error(w, "could not save credentials", http.StatusInternalServerError)
		return
	}

	s.logg.Info(s.logg.WithField(ctx, "ssid", sub.SSID), "credentials saved")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(SavedMessage))

	if s.onSaved != nil {
		s.onSaved()
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, view); err != nil {
		s.logg.Error(r.Context(), "failed to render portal form", err)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logg.Info(s.logg.WithField(ctx, "addr", addr), "captive portal listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
