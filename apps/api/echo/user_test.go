package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyalaya/vidyalaya/core/user"
	"github.com/vidyalaya/vidyalaya/testutil"
)

func Test_authApi_register(t *testing.T) {
	f := setup(t)

	provisioned := testutil.CreateStudent(t, f.store.Students, "Ravi Kumar", "ravi@school.test", "9", "7")
	testutil.CreateUser(t, f.store.Users, "Taken", "taken@school.test", testutil.Password, user.RoleStudent, true)

	studentForm := map[string]interface{}{
		"role":          "student",
		"name":          "Asha Verma",
		"email":         "Asha@School.test",
		"password":      testutil.Password,
		"class":         "10",
		"rollNumber":    "23",
		"subjects":      []string{"Math", "Science"},
		"parentName":    "Meena Verma",
		"parentContact": "9876543210",
	}

	runHttpTests(t, f, []httpTest{
		{name: "malformed body", method: http.MethodPost, path: "/v1/register", body: []byte(`{"role":`), wantCode: http.StatusBadRequest},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/register", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"role":     "this field is required",
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/register",
			body:     []byte(`{"role":"student","email":"weak@school.test","password":"12345678"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/register",
			body:     []byte(`{"role":"student","email":"taken@school.test","password":"` + testutil.Password + `"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, newHttpErr(user.ErrEmailExists.Error())),
		},
		{
			name: "student info missing", method: http.MethodPost, path: "/v1/register",
			body:     []byte(`{"role":"student","email":"new@school.test","password":"` + testutil.Password + `"}`),
			wantCode: http.StatusBadRequest,
		},
	})

	t.Run("student registered", func(t *testing.T) {
		rec := f.serve(http.MethodPost, "/v1/register", "", marchallObj(t, studentForm))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp tokenResponse
		unmarshall(t, rec, &resp)
		assert.Equal(t, "Student registered successfully", resp.Message)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "asha@school.test", resp.User.Email)
		assert.Equal(t, user.RoleStudent, resp.User.Role)
		assert.Equal(t, "STU-10-23", resp.User.StudentID)

		// the token is usable right away
		me := f.serve(http.MethodGet, "/v1/auth/me", resp.Token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("student id taken", func(t *testing.T) {
		form := map[string]interface{}{}
		for k, v := range studentForm {
			form[k] = v
		}
		form["email"] = "other@school.test"
		rec := f.serve(http.MethodPost, "/v1/register", "", marchallObj(t, form))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pre-provisioned student", func(t *testing.T) {
		body := []byte(`{"role":"student","email":"ravi@school.test","password":"` + testutil.Password + `"}`)
		rec := f.serve(http.MethodPost, "/v1/register", "", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp tokenResponse
		unmarshall(t, rec, &resp)
		assert.Equal(t, provisioned.StudentID, resp.User.StudentID)
		assert.Equal(t, provisioned.Name, resp.User.Name)
	})

	t.Run("teacher registered", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"role":           "teacher",
			"name":           "Sunita Rao",
			"email":          "sunita@school.test",
			"password":       testutil.Password,
			"phone":          "+91 98765 43210",
			"classes":        []string{"10"},
			"subjects":       []string{"Physics"},
			"specialization": "Physics",
			"experience":     "6 years",
		})
		rec := f.serve(http.MethodPost, "/v1/register", "", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp tokenResponse
		unmarshall(t, rec, &resp)
		assert.Equal(t, "Teacher registered successfully", resp.Message)
		assert.Equal(t, user.RoleTeacher, resp.User.Role)
		assert.Equal(t, "TEACH43210", resp.User.TeacherID)
	})
}

func Test_authApi_login(t *testing.T) {
	f := setup(t)

	usr := testutil.CreateUser(t, f.store.Users, "Asha", "asha@school.test", testutil.Password, user.RoleStudent, true)
	testutil.CreateUser(t, f.store.Users, "N Dog", "ndog@school.test", testutil.Password, user.RoleStudent, false)

	runHttpTests(t, f, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/auth/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/auth/login",
			body:     []byte(`{"email":"lol@school.test","password":"` + testutil.Password + `"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("invalid email or password")),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/auth/login",
			body:     []byte(`{"email":"asha@school.test","password":"lol"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("invalid email or password")),
		},
		{
			name: "inactive user", method: http.MethodPost, path: "/v1/auth/login",
			body:     []byte(`{"email":"ndog@school.test","password":"` + testutil.Password + `"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, newHttpErr("account deactivated")),
		},
	})

	rec := f.serve(http.MethodPost, "/v1/auth/login", "", []byte(`{"email":"ASHA@school.test","password":"`+testutil.Password+`"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp tokenResponse
	unmarshall(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, usr.Identity(), resp.User)

	claims, err := parseToken(f.conf, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.Subject)
	assert.Equal(t, user.RoleStudent, claims.Role)
	assert.NotEmpty(t, claims.SessionID)
}

func Test_authApi_logout(t *testing.T) {
	f := setup(t)

	usr := testutil.CreateUser(t, f.store.Users, "Asha", "asha@school.test", testutil.Password, user.RoleStudent, true)
	token := f.getToken(t, usr)

	foreign := *newClaims(f.conf, usr, sessionFor(t, f, "someone-else"))
	foreignToken, err := GenerateToken(f.conf, &foreign)
	require.NoError(t, err)

	runHttpTests(t, f, []httpTest{
		{name: "auth required", path: "/v1/auth/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "malformed token", path: "/v1/auth/me", token: "lol", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "session of another user", path: "/v1/auth/me", token: foreignToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "me", path: "/v1/auth/me", token: token},
		{name: "logout", method: http.MethodPost, path: "/v1/auth/logout", token: token, wantData: []byte(`{"success":true}`)},
		{name: "session revoked", path: "/v1/auth/me", token: token, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	})
}

func Test_authMiddleware_inactiveUser(t *testing.T) {
	f := setup(t)

	usr := testutil.CreateUser(t, f.store.Users, "N Dog", "ndog@school.test", "", user.RoleStudent, false)
	rec := f.serve(http.MethodGet, "/v1/auth/me", f.getToken(t, usr), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
