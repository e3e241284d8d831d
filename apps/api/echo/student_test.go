package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/user"
	"github.com/vidyalaya/vidyalaya/testutil"
)

type studentFixture struct {
	*fixture
	std          student.Student
	adminToken   string
	teacherToken string
	selfToken    string
	otherToken   string
}

func setupStudents(t *testing.T) *studentFixture {
	f := setup(t)

	std := testutil.CreateStudent(t, f.store.Students, "Asha Verma", "asha@school.test", "10", "23")
	other := testutil.CreateStudent(t, f.store.Students, "Ravi Kumar", "ravi@school.test", "10", "24")

	admin := testutil.CreateUser(t, f.store.Users, "Admin", "admin@school.test", "", user.RoleAdmin, true)
	tch := testutil.CreateUser(t, f.store.Users, "Sunita", "sunita@school.test", "", user.RoleTeacher, true, "TEACH43210")
	self := testutil.CreateUser(t, f.store.Users, std.Name, std.Email, "", user.RoleStudent, true, std.StudentID)
	otherUsr := testutil.CreateUser(t, f.store.Users, other.Name, other.Email, "", user.RoleStudent, true, other.StudentID)

	return &studentFixture{
		fixture:      f,
		std:          std,
		adminToken:   f.getToken(t, admin),
		teacherToken: f.getToken(t, tch),
		selfToken:    f.getToken(t, self),
		otherToken:   f.getToken(t, otherUsr),
	}
}

func Test_studentApi_create(t *testing.T) {
	f := setupStudents(t)

	form := map[string]interface{}{
		"name":          "Kiran Das",
		"email":         "kiran@school.test",
		"class":         "9",
		"rollNumber":    "4",
		"subjects":      []string{"Math"},
		"parentName":    "Mohan Das",
		"parentContact": "9123456780",
	}

	runHttpTests(t, f.fixture, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", method: http.MethodPost, path: "/v1/students", token: f.teacherToken, body: marchallObj(t, form),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/students", token: f.adminToken, body: []byte(`{"email":"kiran@school.test"}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "created", method: http.MethodPost, path: "/v1/students", token: f.adminToken, body: marchallObj(t, form), wantCode: http.StatusCreated},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/students", token: f.adminToken, body: marchallObj(t, form),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, newHttpErr(student.ErrEmailExists.Error())),
		},
	})

	rec := f.serve(http.MethodGet, "/v1/students?class=9", f.teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stds []student.Student
	unmarshall(t, rec, &stds)
	if assert.Len(t, stds, 1) {
		assert.Equal(t, "STU-9-4", stds[0].StudentID)
		assert.Equal(t, student.CreatedByAdmin, stds[0].CreatedBy)
	}
}

func Test_studentApi_markAttendance(t *testing.T) {
	f := setupStudents(t)
	path := "/v1/students/" + f.std.StudentID + "/attendance"

	present := []byte(`{"date":"2024-02-12","subject":"Math","status":"present"}`)
	absent := []byte(`{"date":"2024-02-12","subject":"Math","status":"absent","notes":"fever"}`)

	runHttpTests(t, f.fixture, []httpTest{
		{name: "auth required", method: http.MethodPost, path: path, body: present, wantCode: http.StatusUnauthorized},
		{name: "staff required", method: http.MethodPost, path: path, token: f.selfToken, body: present, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/students/STU-1-1/attendance", token: f.teacherToken, body: present,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, newHttpErr(student.ErrNotFound.Error())),
		},
		{
			name: "invalid status", method: http.MethodPost, path: path, token: f.teacherToken,
			body: []byte(`{"date":"2024-02-12","subject":"Math","status":"late"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid date", method: http.MethodPost, path: path, token: f.teacherToken,
			body:     []byte(`{"date":"12/02/2024","subject":"Math","status":"present"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "date must be a date formatted as YYYY-MM-DD"}),
		},
	})

	var resp struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Record  attendance.Record `json:"record"`
	}
	rec := f.serve(http.MethodPost, path, f.teacherToken, present)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Attendance marked successfully", resp.Message)
	assert.Equal(t, f.std.ID, resp.Record.StudentID)
	assert.Equal(t, attendance.StatusPresent, resp.Record.Status)
	assert.Equal(t, f.std.Class, resp.Record.Class)
	firstID := resp.Record.ID

	// same day again: the record is updated
	rec = f.serve(http.MethodPost, "/v1/students/"+f.std.ID+"/attendance", f.adminToken, absent)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &resp)
	assert.Equal(t, firstID, resp.Record.ID)
	assert.Equal(t, attendance.StatusAbsent, resp.Record.Status)
	assert.Equal(t, "fever", resp.Record.Notes)

	var list attendanceList
	rec = f.serve(http.MethodGet, path, f.selfToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &list)
	assert.Len(t, list.Records, 1)
	assert.Equal(t, 1, list.TotalCount)
	assert.Equal(t, 1, list.AbsentCount)
	assert.Equal(t, 100, list.AbsentPercentage)
}

func Test_studentApi_attendance(t *testing.T) {
	f := setupStudents(t)
	path := "/v1/students/" + f.std.StudentID + "/attendance"

	mark := func(date, status string) {
		body := []byte(`{"date":"` + date + `","subject":"Math","status":"` + status + `"}`)
		rec := f.serve(http.MethodPost, path, f.teacherToken, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	mark("2024-01-31", attendance.StatusPresent)
	mark("2024-02-01", attendance.StatusPresent)
	mark("2024-02-28", attendance.StatusAbsent)
	mark("2024-02-29", attendance.StatusLeave)
	mark("2024-03-01", attendance.StatusPresent)

	runHttpTests(t, f.fixture, []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "other student", path: path, token: f.otherToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "unknown student", path: "/v1/students/STU-1-1/attendance", token: f.adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, newHttpErr(student.ErrNotFound.Error())),
		},
		{
			name: "invalid month", path: path + "?month=2024-13", token: f.selfToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"month": "month must be formatted as YYYY-MM"}),
		},
	})

	tests := []struct {
		name      string
		path      string
		token     string
		wantDates []string
		wantStats attendance.Stats
	}{
		{
			name:      "all records (self)",
			path:      path,
			token:     f.selfToken,
			wantDates: []string{"2024-03-01", "2024-02-29", "2024-02-28", "2024-02-01", "2024-01-31"},
			wantStats: attendance.Stats{TotalCount: 5, PresentCount: 3, AbsentCount: 1, LeaveCount: 1, PresentPercentage: 60, AbsentPercentage: 20, LeavePercentage: 20},
		},
		{
			name:      "leap february (by primary key)",
			path:      "/v1/students/" + f.std.ID + "/attendance?month=2024-02",
			token:     f.teacherToken,
			wantDates: []string{"2024-02-29", "2024-02-28", "2024-02-01"},
			wantStats: attendance.Stats{TotalCount: 3, PresentCount: 1, AbsentCount: 1, LeaveCount: 1, PresentPercentage: 33, AbsentPercentage: 33, LeavePercentage: 33},
		},
		{
			name:      "empty month",
			path:      path + "?month=2023-02",
			token:     f.adminToken,
			wantDates: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(http.MethodGet, tt.path, tt.token, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var list attendanceList
			unmarshall(t, rec, &list)
			dates := make([]string, 0, len(list.Records))
			for _, r := range list.Records {
				dates = append(dates, r.Date.Format("2006-01-02"))
			}
			assert.Equal(t, tt.wantDates, dates)
			assert.Equal(t, tt.wantStats, list.Stats)
			assert.Len(t, list.RecentRecords, len(tt.wantDates))
		})
	}
}

func Test_studentApi_legacyFallback(t *testing.T) {
	f := setupStudents(t)
	f.store.Memory.SetLegacyAttendance(
		f.std.ID,
		attendance.LegacyEntry{Date: "2023-11-03T00:00:00Z", Subject: "Math", Status: "present"},
		attendance.LegacyEntry{Date: "2023-11-04", Subject: "Math", Status: "absent"},
		attendance.LegacyEntry{Date: "not a date", Subject: "Math", Status: "present"},
		attendance.LegacyEntry{Date: "2023-12-01", Subject: "Math", Status: "present"},
	)

	var list attendanceList
	rec := f.serve(http.MethodGet, "/v1/students/"+f.std.StudentID+"/attendance?month=2023-11", f.selfToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &list)
	assert.Len(t, list.Records, 2)
	assert.Equal(t, 2, list.TotalCount)
	assert.Equal(t, 50, list.PresentPercentage)

	// without a month, the ledger alone is read
	list = attendanceList{}
	rec = f.serve(http.MethodGet, "/v1/students/"+f.std.StudentID+"/attendance", f.selfToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshall(t, rec, &list)
	assert.Empty(t, list.Records)
	assert.Equal(t, 0, list.TotalCount)
}

func Test_studentApi_attendanceSummary(t *testing.T) {
	f := setupStudents(t)
	path := "/v1/students/" + f.std.StudentID + "/attendance"

	statuses := []string{"present", "present", "absent", "present", "leave", "present", "absent"}
	for i, status := range statuses {
		body := []byte(`{"date":"2024-04-0` + string(rune('1'+i)) + `","subject":"Math","status":"` + status + `"}`)
		rec := f.serve(http.MethodPost, path, f.teacherToken, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	runHttpTests(t, f.fixture, []httpTest{
		{name: "other student", path: path + "/summary", token: f.otherToken, wantCode: http.StatusForbidden},
	})

	var sum attendanceSummary
	rec := f.serve(http.MethodGet, path+"/summary", f.selfToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &sum)
	assert.Equal(t, 4, sum.Present)
	assert.Equal(t, 2, sum.Absent)
	assert.Equal(t, 1, sum.Leave)
	assert.Equal(t, 7, sum.Total)
	assert.Equal(t, 57, sum.Percentage)
	if assert.Len(t, sum.RecentRecords, attendance.SummaryRecentCount) {
		assert.Equal(t, "2024-04-07", sum.RecentRecords[0].Date.Format("2006-01-02"))
		assert.Equal(t, attendance.StatusAbsent, sum.RecentRecords[0].Status)
	}

	var legacy struct {
		StudentID  string                   `json:"studentId"`
		Attendance []attendance.LegacyEntry `json:"attendance"`
	}
	rec = f.serve(http.MethodGet, path+"/legacy", f.teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &legacy)
	assert.Equal(t, f.std.StudentID, legacy.StudentID)
	if assert.Len(t, legacy.Attendance, len(statuses)) {
		assert.Equal(t, "2024-04-07T00:00:00Z", legacy.Attendance[0].Date)
		assert.Equal(t, "Math", legacy.Attendance[0].Subject)
	}
}

func Test_studentApi_schedule(t *testing.T) {
	f := setupStudents(t)

	slots := []string{
		`{"class":"10","day":"wednesday","subject":"History","teacherName":"Mr. Iyer","startTime":"10:00","endTime":"11:00","location":"Room 2"}`,
		`{"class":"10","day":"Monday","subject":"Physics","teacherName":"Sunita","startTime":"11:00","endTime":"12:00"}`,
		`{"class":"10","day":"Monday","subject":"Math","teacherName":"Mr. Rao","startTime":"09:00","endTime":"10:00","location":"Room 1"}`,
		`{"class":"9","day":"Monday","subject":"Art","teacherName":"Ms. Sen","startTime":"08:00","endTime":"09:00"}`,
	}
	for _, slot := range slots {
		rec := f.serve(http.MethodPost, "/v1/schedules", f.adminToken, []byte(slot))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	path := "/v1/students/" + f.std.StudentID + "/schedule"
	entries := func(es ...schedule.Entry) []byte { return marchallObj(t, es) }

	rec := f.serve(http.MethodGet, path, f.selfToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var all []schedule.Entry
	unmarshall(t, rec, &all)
	require.Len(t, all, 3)
	ids := map[string]string{}
	for _, e := range all {
		ids[e.Subject] = e.ID
	}

	runHttpTests(t, f.fixture, []httpTest{
		{name: "other student", path: path, token: f.otherToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "week", path: path, token: f.selfToken,
			wantData: entries(
				schedule.Entry{ID: ids["Math"], Day: "Monday", Subject: "Math", Teacher: "Mr. Rao", Time: "09:00 - 10:00", Location: "Room 1"},
				schedule.Entry{ID: ids["Physics"], Day: "Monday", Subject: "Physics", Teacher: "Sunita", Time: "11:00 - 12:00", Location: "Main Building"},
				schedule.Entry{ID: ids["History"], Day: "Wednesday", Subject: "History", Teacher: "Mr. Iyer", Time: "10:00 - 11:00", Location: "Room 2"},
			),
		},
		{
			name: "one day", path: path + "?day=WEDNESDAY", token: f.teacherToken,
			wantData: entries(
				schedule.Entry{ID: ids["History"], Day: "Wednesday", Subject: "History", Teacher: "Mr. Iyer", Time: "10:00 - 11:00", Location: "Room 2"},
			),
		},
		{name: "free day", path: path + "?day=Sunday", token: f.selfToken, wantData: []byte(`[]`)},
	})
}
