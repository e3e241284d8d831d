package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type (
	authApi struct {
		*server
	}

	loginForm struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	tokenResponse struct {
		Message string        `json:"message,omitempty"`
		Token   string        `json:"token"`
		User    user.Identity `json:"user"`
	}
)

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := &authApi{s}

	g.POST("/register", api.register)

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout, auth)
	ag.GET("/me", api.me, auth)
}

func (api *authApi) register(ctx echo.Context) error {
	var form registration.Registration
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := form.Validate(api.Validate); err != nil {
		return err
	}

	usr, err := api.RegSvc.Register(ctx.Request().Context(), form)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	api.metrics.registrations.WithLabelValues(usr.Role).Inc()
	token, err := api.startSession(ctx, usr)
	if err != nil {
		return err
	}

	msg := "Student registered successfully"
	if usr.IsTeacher() {
		msg = "Teacher registered successfully"
	}
	return ctx.JSON(http.StatusCreated, tokenResponse{Message: msg, Token: token, User: usr.Identity()})
}

func (api *authApi) login(ctx echo.Context) error {
	var form loginForm
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := api.Validate.Struct(form); err != nil {
		return err
	}

	usr, err := api.UserSvc.Authenticate(ctx.Request().Context(), form.Email, form.Password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrInvalidCredentials:
			return errAuthenticationFailed
		case user.ErrAccountDeactivated:
			return errAccountDeactivated
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.startSession(ctx, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tokenResponse{Token: token, User: usr.Identity()})
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, ok := contextClaims(ctx)
	if !ok {
		return errUnauthorized
	}
	if err := api.Sessions.Delete(ctx.Request().Context(), claims.SessionID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}
