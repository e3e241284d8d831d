package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/user"
	sessionsvc "github.com/vidyalaya/vidyalaya/services/session"
)

// authMiddleware authenticates the request bearer token against its session
// and loads the user into the context.
func (s *server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tokenStr, ok := bearerToken(ctx)
		if !ok {
			return errUnauthorized
		}
		claims, err := parseToken(s.Conf, tokenStr)
		if err != nil {
			return errUnauthorized
		}

		reqCtx := ctx.Request().Context()
		sess, err := s.Sessions.Get(reqCtx, claims.SessionID)
		if err != nil {
			if errors.Cause(err) == sessionsvc.ErrNotFound {
				return errUnauthorized
			}
			return errors.Wrap(err, "getting session")
		}
		if sess.UserID != claims.Subject {
			return errUnauthorized
		}

		usr, err := s.UserSvc.GetByID(reqCtx, claims.Subject)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errUnauthorized
			}
			return errors.Wrap(err, "finding user by ID")
		}
		if !usr.IsActive {
			return errAccountDeactivated
		}

		ctx.Set(contextClaimsKey, claims)
		ctx.Set(contextUserKey, usr)
		return next(ctx)
	}
}

// requireRoles must run after authMiddleware.
func requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

var staffOnly = requireRoles(user.RoleAdmin, user.RoleTeacher)

// accessibleStudent resolves the student of the `:id` path param.
// Staff may access any student, a student only itself.
func (s *server) accessibleStudent(ctx echo.Context) (student.Student, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return student.Student{}, err
	}
	std, err := s.Directory.ResolveStudent(ctx.Request().Context(), directory.AnyRef(ctx.Param("id")))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "resolving student")
	}
	if usr.HasAnyRole(user.RoleAdmin, user.RoleTeacher) || directory.OwnsStudent(usr, std) {
		return std, nil
	}
	return student.Student{}, errHttpForbidden
}
