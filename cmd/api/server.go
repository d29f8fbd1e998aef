package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"notaryregistry/activity"
	"notaryregistry/auth"
	"notaryregistry/document"
)

// Error messages returned to clients.
const (
	msgNoToken          = "No token provided"
	msgAuthRequired     = "Authentication required"
	msgInvalidToken     = "Invalid or expired token"
	msgBadCredentials   = "Invalid credentials"
	msgCredsRequired    = "Email and password required"
	msgNotaryOnly       = "Only notaries can register documents"
	msgUserNotFound     = "User not found"
	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	msgBadBody          = "Invalid request body"
	msgServerErrPrefix  = "Server error: "
)

type authService interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	GetUserByID(ctx context.Context, userID int64) (*auth.User, error)
}

type documentService interface {
	List(ctx context.Context, f document.Filter) ([]document.Document, error)
	Create(ctx context.Context, p document.CreateParams) (document.Created, error)
}

type activityService interface {
	History(ctx context.Context, userID int64) ([]activity.Record, error)
}

type authorizer interface {
	Authorize(headerValue string) (auth.Principal, error)
}

// Server holds the handlers of the registry HTTP API.
type Server struct {
	authService     authService
	documentService documentService
	activityService activityService
	gate            authorizer
	logger          *zap.Logger
}

// apiError is a failure with a client-facing message.
type apiError struct {
	status  int
	message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.cause }

func newAPIError(status int, message string, cause error) *apiError {
	return &apiError{status: status, message: message, cause: cause}
}

// Echo builds the HTTP handler with middleware and routes mounted.
func (s *Server) Echo(allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogError:     true,
			HandleError:  true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
					zap.String("request_id", v.RequestID),
				}
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				s.logger.Info("request handled", fields...)
				return nil
			},
		}),
		middleware.Recover(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, auth.HeaderName},
			MaxAge:       86400,
		}),
	)

	s.register(e)
	return e
}

func (s *Server) register(e *echo.Echo) {
	e.POST("/auth", s.handleLogin)
	e.GET("/auth", s.handleMe, s.requireToken(msgNoToken))
	e.GET("/documents", s.handleListDocuments)
	e.POST("/documents", s.handleCreateDocument, s.requireToken(msgAuthRequired))
	e.GET("/activity", s.handleActivity, s.requireToken(msgAuthRequired))
}

// requireToken rejects requests without a valid token and stores the
// principal in the request context. missing is the message for an absent
// header.
func (s *Server) requireToken(missing string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := s.gate.Authorize(c.Request().Header.Get(auth.HeaderName))
			if errors.Is(err, auth.ErrNoToken) {
				return newAPIError(http.StatusUnauthorized, missing, err)
			}
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// handleError renders every failure as {"error": message}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, errorResponse{Error: message})
	}
	if writeErr != nil {
		s.logger.Warn("write error response", zap.Error(writeErr))
	}
}

func classify(err error) (int, string) {
	var (
		apiErr  *apiError
		httpErr *echo.HTTPError
		missing *document.MissingFieldError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.status, apiErr.message
	case errors.Is(err, auth.ErrInvalidCredentials):
		return auth.StatusCode(err), msgBadCredentials
	case errors.Is(err, auth.ErrNoToken):
		return auth.StatusCode(err), msgAuthRequired
	case errors.Is(err, auth.ErrUnauthenticated):
		return auth.StatusCode(err), msgInvalidToken
	case errors.Is(err, auth.ErrForbidden):
		return auth.StatusCode(err), msgNotaryOnly
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, msgUserNotFound
	case errors.As(err, &missing):
		return http.StatusBadRequest, "Missing required field: " + missing.Field
	case errors.Is(err, document.ErrInvalidDate):
		return http.StatusBadRequest, "Invalid document_date, expected YYYY-MM-DD"
	case errors.As(err, &httpErr):
		return httpErr.Code, httpMessage(httpErr)
	default:
		return http.StatusInternalServerError, msgServerErrPrefix + err.Error()
	}
}

func httpMessage(he *echo.HTTPError) string {
	switch he.Code {
	case http.StatusMethodNotAllowed:
		return msgMethodNotAllowed
	case http.StatusNotFound:
		return msgNotFound
	}
	if m, ok := he.Message.(string); ok {
		return m
	}
	return http.StatusText(he.Code)
}
