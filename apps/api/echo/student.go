package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type (
	studentApi struct {
		*server
	}

	attendanceList struct {
		attendance.Stats
		Records       []attendance.Record       `json:"records"`
		RecentRecords []attendance.RecentRecord `json:"recentRecords"`
	}

	attendanceSummary struct {
		Present       int                       `json:"present"`
		Absent        int                       `json:"absent"`
		Leave         int                       `json:"leave"`
		Total         int                       `json:"total"`
		Percentage    int                       `json:"percentage"`
		RecentRecords []attendance.RecentRecord `json:"recentRecords"`
	}
)

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := &studentApi{s}

	sg := g.Group("/students", auth)
	sg.GET("", api.list, staffOnly)
	sg.POST("", api.create, requireRoles(user.RoleAdmin))
	sg.GET("/:id/attendance", api.attendance)
	sg.POST("/:id/attendance", api.markAttendance, staffOnly)
	sg.GET("/:id/attendance/summary", api.attendanceSummary)
	sg.GET("/:id/attendance/legacy", api.legacyAttendance)
	sg.GET("/:id/schedule", api.schedule)
}

func (api *studentApi) list(ctx echo.Context) error {
	stds, err := api.Directory.Students(ctx.Request().Context(), ctx.QueryParam("class"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stds)
}

func (api *studentApi) create(ctx echo.Context) error {
	var form registration.NewStudent
	if err := ctx.Bind(&form); err != nil {
		return err
	}
	if err := form.Validate(api.Validate); err != nil {
		return err
	}

	std, err := api.RegSvc.AddStudent(ctx.Request().Context(), form)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Student added successfully",
		"student": std,
	})
}

func (api *studentApi) attendance(ctx echo.Context) error {
	std, err := api.accessibleStudent(ctx)
	if err != nil {
		return err
	}
	month, err := bindMonth(ctx)
	if err != nil {
		return err
	}

	recs, err := api.AttendanceSvc.Query(ctx.Request().Context(), directory.PrimaryKeyRef(std.ID), month)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, attendanceList{
		Stats:         attendance.ComputeStats(recs),
		Records:       recs,
		RecentRecords: attendance.RecentOf(recs, attendance.QueryRecentCount),
	})
}

func (api *studentApi) markAttendance(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	std, err := api.accessibleStudent(ctx)
	if err != nil {
		return err
	}

	var form attendance.NewRecord
	if err = ctx.Bind(&form); err != nil {
		return err
	}
	if err = form.Validate(api.Validate); err != nil {
		return err
	}

	rec, created, err := api.AttendanceSvc.Record(ctx.Request().Context(), directory.PrimaryKeyRef(std.ID), form, usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	api.metrics.attendance.WithLabelValues(rec.Status, outcome(created)).Inc()
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Attendance marked successfully",
		"record":  rec,
	})
}

func (api *studentApi) attendanceSummary(ctx echo.Context) error {
	std, err := api.accessibleStudent(ctx)
	if err != nil {
		return err
	}

	sum, err := api.AttendanceSvc.Summarize(ctx.Request().Context(), directory.PrimaryKeyRef(std.ID), attendance.SummaryRecentCount)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, attendanceSummary{
		Present:       sum.PresentCount,
		Absent:        sum.AbsentCount,
		Leave:         sum.LeaveCount,
		Total:         sum.TotalCount,
		Percentage:    sum.PresentPercentage,
		RecentRecords: sum.Recent,
	})
}

func (api *studentApi) legacyAttendance(ctx echo.Context) error {
	std, err := api.accessibleStudent(ctx)
	if err != nil {
		return err
	}

	entries, err := api.AttendanceSvc.LegacyView(ctx.Request().Context(), directory.PrimaryKeyRef(std.ID))
	if err != nil {
		return errors.Wrap(err, "getting legacy attendance")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"studentId": std.StudentID, "attendance": entries})
}

func (api *studentApi) schedule(ctx echo.Context) error {
	std, err := api.accessibleStudent(ctx)
	if err != nil {
		return err
	}

	entries, err := api.ScheduleSvc.ScheduleForClass(ctx.Request().Context(), directory.PrimaryKeyRef(std.ID), ctx.QueryParam("day"))
	if err != nil {
		return errors.Wrap(err, "getting schedule")
	}
	return ctx.JSON(http.StatusOK, entries)
}
