package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type scheduleApi struct {
	*server
}

func registerScheduleAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := &scheduleApi{s}

	sg := g.Group("/schedules", auth)
	sg.GET("", api.list)
	sg.POST("", api.create, requireRoles(user.RoleAdmin))
}

func (api *scheduleApi) list(ctx echo.Context) error {
	slots, err := api.ScheduleSvc.ClassSlots(ctx.Request().Context(), ctx.QueryParam("class"), ctx.QueryParam("day"))
	if err != nil {
		return err
	}
	if slots == nil {
		slots = []schedule.Slot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var form schedule.NewSlot
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := form.Validate(api.Validate); err != nil {
		return err
	}

	slot, err := api.ScheduleSvc.AddSlot(ctx.Request().Context(), form)
	if err != nil {
		return errors.Wrap(err, "adding slot")
	}
	return ctx.JSON(http.StatusCreated, slot)
}
