package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmconnect/marketplace-gateway/internal/api/middleware"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
	"github.com/farmconnect/marketplace-gateway/internal/core/service"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	sessions ports.SessionService
	cookie   CookieConfig
}

func NewAuthHandler(sessions ports.SessionService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,role"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	From     string `json:"from"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	User      *sessionUser `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
	Redirect  string       `json:"redirect"`
}

type registerResponse struct {
	User *domain.User `json:"user"`
}

type sessionResponse struct {
	User      *sessionUser `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
	Landing   string       `json:"landing"`
}

// Register creates a marketplace account. It does not sign the user in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.sessions.Register(c.Request().Context(), ports.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Location: req.Location,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{User: user})
}

// Login signs the user in, sets the session cookie and tells the client where
// to go next: the originally requested view or the role's dashboard.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Param        from  query     string        false "Path originally requested"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	sess, token, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	from := req.From
	if from == "" {
		from = c.QueryParam("from")
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		User:      toSessionUser(sess),
		ExpiresAt: sess.ExpiresAt,
		Redirect:  service.ReturnPath(from, sess.Role),
	})
}

// Logout ends the session. It succeeds for anonymous callers too.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sess := middleware.CurrentSession(c); sess != nil {
		if err := h.sessions.Logout(c.Request().Context(), sess); err != nil {
			return err
		}
	}
	c.SetCookie(middleware.ExpiredCookie(h.cookie.Name))
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Session reports the current user after confirming the market API still
// accepts the session's token.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Verify(c.Request().Context(), sess); err != nil {
		return err
	}

	landing, ok := domain.LandingPath(sess.Role)
	if !ok {
		landing = domain.DefaultPath
	}
	return c.JSON(http.StatusOK, sessionResponse{
		User:      toSessionUser(sess),
		ExpiresAt: sess.ExpiresAt,
		Landing:   landing,
	})
}
