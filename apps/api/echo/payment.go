package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/payment"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type paymentApi struct {
	*server
}

func registerPaymentAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := &paymentApi{s}
	adminOnly := requireRoles(user.RoleAdmin)

	pg := g.Group("/payments", auth, adminOnly)
	pg.GET("", api.listPayments)
	pg.POST("/:id/pay", api.payPayment)

	sg := g.Group("/salaries", auth, adminOnly)
	sg.GET("", api.listSalaries)
	sg.POST("/:id/pay", api.paySalary)
}

func (s *server) location() *time.Location {
	if loc := s.Conf.School.Location; loc != nil {
		return loc
	}
	return time.UTC
}

func (api *paymentApi) listPayments(ctx echo.Context) error {
	var period Period
	if err := period.Bind(ctx, api.location()); err != nil {
		return err
	}

	rows, err := api.PaymentSvc.ListPayments(ctx.Request().Context(), period.Month, period.Year, ctx.QueryParam("class"))
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *paymentApi) payPayment(ctx echo.Context) error {
	var form payment.MarkPaid
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := form.Validate(api.Validate); err != nil {
		return err
	}

	p, created, err := api.PaymentSvc.MarkPaymentPaid(ctx.Request().Context(), ctx.Param("id"), form)
	if err != nil {
		return errors.Wrap(err, "marking payment paid")
	}
	api.metrics.payments.WithLabelValues("fee", outcome(created)).Inc()
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Payment marked as paid",
		"created": created,
		"payment": p,
	})
}

func (api *paymentApi) listSalaries(ctx echo.Context) error {
	var period Period
	if err := period.Bind(ctx, api.location()); err != nil {
		return err
	}

	rows, err := api.PaymentSvc.ListSalaries(ctx.Request().Context(), period.Month, period.Year)
	if err != nil {
		return errors.Wrap(err, "listing salaries")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *paymentApi) paySalary(ctx echo.Context) error {
	var form payment.MarkPaid
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := form.Validate(api.Validate); err != nil {
		return err
	}

	sal, created, err := api.PaymentSvc.MarkSalaryPaid(ctx.Request().Context(), ctx.Param("id"), form)
	if err != nil {
		return errors.Wrap(err, "marking salary paid")
	}
	api.metrics.payments.WithLabelValues("salary", outcome(created)).Inc()
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Salary marked as paid",
		"created": created,
		"salary":  sal,
	})
}
