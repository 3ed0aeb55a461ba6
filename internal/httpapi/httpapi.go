package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/onair"
	"github.com/dmitrymomot/onair/pkg/health"
	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/scope"
)

// Translator is the part of onair.Router the API exposes.
type Translator interface {
	Translate(ctx context.Context, locale, key string, opts ...onair.TranslateOption) (onair.Result, error)
	AvailableLocales(ctx context.Context) ([]string, error)
	ReloadAll(ctx context.Context, opts ...onair.ReloadOption) error
	ReloadLocale(ctx context.Context, locale string) error
}

type config struct {
	log           *slog.Logger
	checker       *health.Checker
	metrics       http.Handler
	defaultLocale string
}

// Option configures the API handler.
type Option func(*config)

// WithLogger sets the access and error logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithChecker serves readiness from checker. Without it readiness always
// passes.
func WithChecker(checker *health.Checker) Option {
	return func(c *config) {
		c.checker = checker
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *config) {
		c.metrics = h
	}
}

// WithDefaultLocale sets the locale used when Accept-Language matches
// nothing. Default "en".
func WithDefaultLocale(locale string) Option {
	return func(c *config) {
		if locale != "" {
			c.defaultLocale = locale
		}
	}
}

// TranslationResponse is the body of translate endpoints.
type TranslationResponse struct {
	Locale string `json:"locale"`
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Found  bool   `json:"found"`
	Tier   string `json:"tier"`
}

// LocalesResponse is the body of GET /v1/locales.
type LocalesResponse struct {
	Locales []string `json:"locales"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type api struct {
	tr  Translator
	cfg *config
}

// New returns the HTTP handler for tr.
func New(tr Translator, opts ...Option) http.Handler {
	cfg := &config{
		log:           logger.NewNope(),
		defaultLocale: "en",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.checker == nil {
		cfg.checker = health.NewChecker()
	}

	a := &api{tr: tr, cfg: cfg}

	r := chi.NewRouter()
	r.Use(requestID, recoverer(cfg.log), accessLog(cfg.log))

	r.Get("/health/live", health.LiveHandler())
	r.Get("/health/ready", cfg.checker.ReadyHandler())
	if cfg.metrics != nil {
		r.Handle("/metrics", cfg.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(scope.Middleware).Get("/translate", a.translateNegotiated)
		r.With(scope.Middleware).Get("/translate/{locale}", a.translate)
		r.Get("/locales", a.locales)
		r.Post("/reload", a.reloadAll)
		r.Post("/locales/{locale}/reload", a.reloadLocale)
	})

	return r
}

func (a *api) translate(w http.ResponseWriter, r *http.Request) {
	a.respondTranslation(w, r, chi.URLParam(r, "locale"))
}

func (a *api) translateNegotiated(w http.ResponseWriter, r *http.Request) {
	locales, err := a.tr.AvailableLocales(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	locale := negotiate(r.Header.Get("Accept-Language"), locales, a.cfg.defaultLocale)
	a.respondTranslation(w, r, locale)
}

func (a *api) respondTranslation(w http.ResponseWriter, r *http.Request, locale string) {
	q := r.URL.Query()
	key := q.Get("key")

	var opts []onair.TranslateOption
	if q.Has("default") {
		opts = append(opts, onair.WithDefault(q.Get("default")))
	}

	res, err := a.tr.Translate(r.Context(), locale, key, opts...)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TranslationResponse{
		Locale: locale,
		Key:    key,
		Value:  res.Value,
		Found:  res.Found,
		Tier:   res.Tier.String(),
	})
}

func (a *api) locales(w http.ResponseWriter, r *http.Request) {
	locales, err := a.tr.AvailableLocales(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if locales == nil {
		locales = []string{}
	}
	writeJSON(w, http.StatusOK, LocalesResponse{Locales: locales})
}

func (a *api) reloadAll(w http.ResponseWriter, r *http.Request) {
	warm, _ := strconv.ParseBool(r.URL.Query().Get("warm"))
	if err := a.tr.ReloadAll(r.Context(), onair.WithWarm(warm)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) reloadLocale(w http.ResponseWriter, r *http.Request) {
	if err := a.tr.ReloadLocale(r.Context(), chi.URLParam(r, "locale")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.cfg.log.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, onair.ErrInvalidKeyPath):
		return http.StatusBadRequest
	case errors.Is(err, onair.ErrLoadFailed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
