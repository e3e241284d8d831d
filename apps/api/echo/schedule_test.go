package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/user"
	"github.com/vidyalaya/vidyalaya/testutil"
)

func Test_scheduleApi(t *testing.T) {
	f := setup(t)

	admin := testutil.CreateUser(t, f.store.Users, "Admin", "admin@school.test", "", user.RoleAdmin, true)
	stdUsr := testutil.CreateUser(t, f.store.Users, "Asha", "asha@school.test", "", user.RoleStudent, true)
	adminToken, stdToken := f.getToken(t, admin), f.getToken(t, stdUsr)

	slot := []byte(`{"class":"10","day":"friday","subject":"Math","teacherName":"Mr. Rao","startTime":"9:00","endTime":"10:00"}`)

	runHttpTests(t, f, []httpTest{
		{name: "auth required", path: "/v1/schedules", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", method: http.MethodPost, path: "/v1/schedules", token: stdToken, body: slot, wantCode: http.StatusForbidden},
		{
			name: "unknown day", method: http.MethodPost, path: "/v1/schedules", token: adminToken,
			body:     []byte(`{"class":"10","day":"Funday","subject":"Math","teacherName":"Mr. Rao","startTime":"09:00","endTime":"10:00"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "ends before start", method: http.MethodPost, path: "/v1/schedules", token: adminToken,
			body:     []byte(`{"class":"10","day":"Monday","subject":"Math","teacherName":"Mr. Rao","startTime":"11:00","endTime":"10:00"}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "empty", path: "/v1/schedules?class=10", token: stdToken, wantData: []byte(`[]`)},
	})

	rec := f.serve(http.MethodPost, "/v1/schedules", adminToken, slot)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created schedule.Slot
	unmarshall(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Friday", created.Day)

	runHttpTests(t, f, []httpTest{
		{name: "class", path: "/v1/schedules?class=10", token: stdToken, wantData: marchallObj(t, []schedule.Slot{created})},
		{name: "other class", path: "/v1/schedules?class=9", token: stdToken, wantData: []byte(`[]`)},
	})
}
