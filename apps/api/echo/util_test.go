package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/payment"
	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/user"
	emailsvc "github.com/vidyalaya/vidyalaya/services/email"
	logsvc "github.com/vidyalaya/vidyalaya/services/logger"
	sessionsvc "github.com/vidyalaya/vidyalaya/services/session"
	"github.com/vidyalaya/vidyalaya/storage"
	"github.com/vidyalaya/vidyalaya/testutil"
)

var (
	errMissingToken = httpErr{Error: "user not authenticated", Message: "user not authenticated"}
	errForbidden    = httpErr{Error: "permission denied", Message: "permission denied"}
)

type fixture struct {
	app      Server
	conf     *core.Config
	store    *storage.Storage
	sessions sessionsvc.Store
}

func setup(t *testing.T) *fixture {
	conf := testutil.NewConfig()
	store := storage.OpenMemory()
	sessions := sessionsvc.NewMemoryStore(conf.Session.TTL)
	validate, translator := testutil.NewValidator()

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	dir := directory.New(store.Users, store.Students, store.Teachers)

	app := NewServer(ServerDeps{
		Conf:      conf,
		Logger:    logger,
		Directory: dir,
		UserSvc:   user.NewService(store.Users),
		RegSvc: registration.NewService(
			store.Tx, store.Users, store.Students, store.Teachers, mailSvc, conf.School.DefaultTeacherPassword,
		),
		AttendanceSvc: attendance.NewService(store.Attendance, dir, conf.School.Location),
		ScheduleSvc:   schedule.NewService(store.Schedules, dir, conf.School.DefaultLocation),
		PaymentSvc:    payment.NewService(store.Payments, dir, mailSvc, conf.School.MonthlyFee, conf.School.Location),
		Sessions:      sessions,
		Validate:      validate,
		Translator:    translator,
		HealthCheck:   store.Ping,
	})
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return &fixture{
		app:      app,
		conf:     conf,
		store:    store,
		sessions: sessions,
	}
}

func (f *fixture) getToken(t *testing.T, usr user.User) string {
	sess, err := f.sessions.Create(context.Background(), usr.ID, usr.Role)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	token, err := GenerateToken(f.conf, newClaims(f.conf, usr, sess))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func sessionFor(t *testing.T, f *fixture, userID string) sessionsvc.Session {
	sess, err := f.sessions.Create(context.Background(), userID, user.RoleAdmin)
	if err != nil {
		t.Fatalf("sessionFor() failed: %v", err)
	}
	return sess
}

func (f *fixture) serve(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, body)
	f.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newHttpErr(msg string) httpErr {
	return httpErr{Error: msg, Message: msg}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte // not checked when nil
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshall(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHttpTests(t *testing.T, f *fixture, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
