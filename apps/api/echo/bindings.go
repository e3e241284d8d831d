package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
)

var errInvalidQueryParam = errors.New("invalid query parameter")

// Period is the month/year filter of the payment and salary listings.
// Missing values default to the current period in loc.
type Period struct {
	Month int
	Year  int
}

func (p *Period) Bind(ctx echo.Context, loc *time.Location) error {
	now := time.Now().In(loc)
	p.Month, p.Year = int(now.Month()), now.Year()

	var err error
	if p.Month, err = intParam(ctx, "month", p.Month); err != nil {
		return err
	}
	p.Year, err = intParam(ctx, "year", p.Year)
	return err
}

// bindMonth parses the optional `month=YYYY-MM` filter; nil means unfiltered.
func bindMonth(ctx echo.Context) (*attendance.Month, error) {
	val := ctx.QueryParam("month")
	if val == "" {
		return nil, nil
	}
	month, err := attendance.ParseMonth(val)
	if err != nil {
		return nil, err
	}
	return &month, nil
}

func intParam(ctx echo.Context, name string, def int) (int, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewValidationError(errInvalidQueryParam, core.FieldError{Field: name, Error: name + " must be an integer"})
	}
	return n, nil
}
