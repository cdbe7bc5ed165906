// Package router wires the HTTP surface: registration, login/token,
// shortening, the owner's link listing, redirects and health. Handlers
// decode and validate requests, call the service, and map domain errors
// to status codes; the behavior itself lives in the service layer.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chote-app/chote/internal/auth"
	"github.com/chote-app/chote/internal/logger"
	"github.com/chote-app/chote/internal/models"
)

type shortenerService interface {
	Register(ctx context.Context, email, password string) (*models.UserInfo, error)

	Login(ctx context.Context, email, password string) (string, error)

	Shorten(ctx context.Context, longURL, ownerID string) (*models.URLInfo, error)

	Resolve(ctx context.Context, code string) (string, error)

	LinksByOwner(ctx context.Context, ownerID string) (models.OwnedUrls, error)

	Ping(ctx context.Context) error
}

type authenticator interface {
	RequireUser(h http.Handler) http.Handler
}

// Router holds the handler dependencies.
type Router struct {
	service  shortenerService
	docsURL  string
	validate *validator.Validate
}

// New builds the chi mux with all routes and middleware attached.
func New(service shortenerService, authenticator authenticator, docsURL string) *chi.Mux {
	rt := &Router{
		service:  service,
		docsURL:  docsURL,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)

	router.Get(`/`, rt.getRoot)
	router.Post(`/register`, rt.postRegister)
	// /token exists so OAuth2-style form clients can authorize; /login is
	// the same handler under a friendlier name.
	router.Post(`/token`, rt.postLogin)
	router.Post(`/login`, rt.postLogin)
	router.Get(`/ping`, rt.getPing)

	router.Group(func(protected chi.Router) {
		protected.Use(authenticator.RequireUser)
		protected.Post(`/shorten`, rt.postShorten)
		protected.Get(`/api/user/urls`, rt.getUserUrls)
	})

	router.Get(`/{shortCode}`, rt.getRedirect)
	router.Get(`/{shortCode}/`, rt.getRedirect)

	return router
}

func writeJSON(response http.ResponseWriter, status int, body any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("Error encoding response body: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, status int, err error) {
	writeJSON(response, status, models.ErrorResponse{Detail: err.Error()})
}

func (rt *Router) getRoot(response http.ResponseWriter, request *http.Request) {
	http.Redirect(response, request, rt.docsURL, http.StatusTemporaryRedirect)
}

func (rt *Router) postRegister(response http.ResponseWriter, request *http.Request) {
	var registerRequest models.RegisterRequest
	if err := json.NewDecoder(request.Body).Decode(&registerRequest); err != nil {
		writeError(response, http.StatusBadRequest, errors.New("malformed request body"))
		return
	}
	if err := rt.validate.Struct(registerRequest); err != nil {
		writeError(response, http.StatusBadRequest, models.ErrEmailNotAllowed)
		return
	}

	userInfo, err := rt.service.Register(request.Context(), registerRequest.Email, registerRequest.Password)
	if errors.Is(err, models.ErrEmailAlreadyRegistered) || errors.Is(err, models.ErrEmailNotAllowed) {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.service.Register()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusCreated, userInfo)
}

func (rt *Router) postLogin(response http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		writeError(response, http.StatusBadRequest, errors.New("malformed form body"))
		return
	}

	tokenString, err := rt.service.Login(
		request.Context(),
		request.PostFormValue("username"),
		request.PostFormValue("password"),
	)
	if errors.Is(err, models.ErrInvalidCredentials) {
		response.Header().Set("WWW-Authenticate", "Bearer")
		writeError(response, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.service.Login()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
	})
}

func (rt *Router) postShorten(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := request.Context().Value(auth.UserIDKey).(string)
	if !ok || ownerID == "" {
		writeError(response, http.StatusUnauthorized, models.ErrUnauthorized)
		return
	}

	var shortenRequest models.ShortenRequest
	if err := json.NewDecoder(request.Body).Decode(&shortenRequest); err != nil {
		writeError(response, http.StatusBadRequest, errors.New("malformed request body"))
		return
	}
	if err := rt.validate.Struct(shortenRequest); err != nil {
		writeError(response, http.StatusBadRequest, errors.New("long_url is required"))
		return
	}

	urlInfo, err := rt.service.Shorten(request.Context(), shortenRequest.LongURL, ownerID)
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.service.Shorten()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusCreated, urlInfo)
}

func (rt *Router) getUserUrls(response http.ResponseWriter, request *http.Request) {
	ownerID, ok := request.Context().Value(auth.UserIDKey).(string)
	if !ok || ownerID == "" {
		writeError(response, http.StatusUnauthorized, models.ErrUnauthorized)
		return
	}

	urls, err := rt.service.LinksByOwner(request.Context(), ownerID)
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.service.LinksByOwner()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, urls)
}

func (rt *Router) getPing(response http.ResponseWriter, request *http.Request) {
	if err := rt.service.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `rt.service.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (rt *Router) getRedirect(response http.ResponseWriter, request *http.Request) {
	longURL, err := rt.service.Resolve(request.Context(), chi.URLParam(request, "shortCode"))
	if errors.Is(err, models.ErrNotFound) {
		writeError(response, http.StatusNotFound, err)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.service.Resolve()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	// The stored URL is trusted verbatim; a temporary redirect keeps
	// clients from caching it.
	http.Redirect(response, request, longURL, http.StatusTemporaryRedirect)
}
