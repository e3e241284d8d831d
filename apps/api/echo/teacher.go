package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type teacherApi struct {
	*server
}

func registerTeacherAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := &teacherApi{s}
	adminOnly := requireRoles(user.RoleAdmin)

	tg := g.Group("/teachers", auth)
	tg.GET("", api.list, staffOnly)
	tg.POST("/add", api.add, adminOnly)
	tg.GET("/:id/salary-breakdown", api.salaryBreakdown, adminOnly)
}

func (api *teacherApi) list(ctx echo.Context) error {
	activeOnly := ctx.QueryParam("active") == "true"
	tchs, err := api.Directory.Teachers(ctx.Request().Context(), activeOnly)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tchs)
}

func (api *teacherApi) add(ctx echo.Context) error {
	var form registration.NewTeacher
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := form.Validate(api.Validate); err != nil {
		return err
	}

	tch, err := api.RegSvc.AddTeacher(ctx.Request().Context(), form)
	if err != nil {
		return errors.Wrap(err, "adding teacher")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Teacher added successfully",
		"teacher": tch,
	})
}

func (api *teacherApi) salaryBreakdown(ctx echo.Context) error {
	month, err := intParam(ctx, "month", int(time.Now().In(api.location()).Month()))
	if err != nil {
		return err
	}
	absentDays, err := intParam(ctx, "absentDays", 0)
	if err != nil {
		return err
	}
	lateArrivals, err := intParam(ctx, "lateArrivals", 0)
	if err != nil {
		return err
	}

	bd, err := api.PaymentSvc.SalaryBreakdown(
		ctx.Request().Context(),
		directory.AnyRef(ctx.Param("id")),
		time.Month(month),
		absentDays,
		lateArrivals,
	)
	if err != nil {
		return errors.Wrap(err, "computing salary breakdown")
	}
	return ctx.JSON(http.StatusOK, bd)
}
