package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YouSangSon/reports-service/internal/application/filter"
	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/handler"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/middleware"
	"github.com/YouSangSon/reports-service/internal/pkg/auth"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockReportService는 ReportService의 mock입니다
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, owner string, in *schema.ReportIn) (*schema.ReportOut, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.ReportOut), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, id string) (*schema.ReportOut, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.ReportOut), args.Error(1)
}

func (m *MockReportService) Update(ctx context.Context, owner, id string, update *schema.ReportUpdate) (*schema.ReportOut, error) {
	args := m.Called(ctx, owner, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.ReportOut), args.Error(1)
}

func (m *MockReportService) Replace(ctx context.Context, owner, id string, in *schema.ReportIn) (*schema.ReportOut, error) {
	args := m.Called(ctx, owner, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.ReportOut), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, owner, id string) error {
	return m.Called(ctx, owner, id).Error(0)
}

func (m *MockReportService) ListByObject(ctx context.Context, q *filter.QueryByObject) (*schema.Paginated[schema.ReportByObject], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Paginated[schema.ReportByObject]), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, q *filter.QueryByReport) (*schema.Paginated[schema.ReportOut], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Paginated[schema.ReportOut]), args.Error(1)
}

func (m *MockReportService) ExportByObject(ctx context.Context, q *filter.QueryByObject) ([]schema.ReportByObject, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.ReportByObject), args.Error(1)
}

func (m *MockReportService) CountByDay(ctx context.Context, q *filter.QueryByDay) ([]schema.ReportByDay, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.ReportByDay), args.Error(1)
}

func (m *MockReportService) CountByUser(ctx context.Context, q *filter.QueryByUser) ([]schema.ReportByUser, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.ReportByUser), args.Error(1)
}

// MockUserService는 UserService의 mock입니다
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in *schema.UserSignup) (*schema.UserOut, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.UserOut), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, in *schema.UserLogin) (*schema.Token, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Token), args.Error(1)
}

func (m *MockUserService) VerifyToken(ctx context.Context, in *schema.TokenIn) (*schema.TokenValidity, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.TokenValidity), args.Error(1)
}

func (m *MockUserService) Refresh(ctx context.Context, in *schema.RefreshIn) (*schema.Token, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Token), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*schema.UserOut, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.UserOut), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id string, update *schema.UserUpdate) (*schema.UserOut, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.UserOut), args.Error(1)
}

func (m *MockUserService) SetFlags(ctx context.Context, id string, flags *schema.UserFlags) (*schema.UserOut, error) {
	args := m.Called(ctx, id, flags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.UserOut), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

const testUserID = "64b7f0c2a1b2c3d4e5f60718"

func newIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer("secret", "reports-service", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return issuer
}

func bearer(t *testing.T, issuer *auth.Issuer) string {
	t.Helper()
	token, err := issuer.Issue(testUserID, "alice")
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestEngine(t *testing.T, reports handler.ReportService, users handler.UserService) (*gin.Engine, *auth.Issuer) {
	t.Helper()
	issuer := newIssuer(t)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.ErrorHandlerMiddleware(), middleware.AuthMiddleware(issuer))

	rh := handler.NewReportHandler(reports)
	r.GET("/reports", rh.ListByObject)
	r.GET("/reports/list", rh.List)
	r.GET("/reports/count_by_day", rh.CountByDay)
	r.GET("/reports/count_by_user", rh.CountByUser)
	r.GET("/reports/csv", rh.ExportCSV)
	r.POST("/reports", rh.Create)
	r.GET("/reports/:report_id", rh.Get)
	r.PATCH("/reports/:report_id", rh.Update)
	r.PUT("/reports/:report_id", rh.Replace)
	r.DELETE("/reports/:report_id", rh.Delete)

	uh := handler.NewUserHandler(users)
	r.POST("/users", uh.Register)
	r.POST("/users/login", uh.Login)
	r.POST("/users/token/verify", uh.VerifyToken)
	r.POST("/users/token/refresh", uh.RefreshToken)
	r.GET("/users/me", uh.Me)
	r.PATCH("/users/me", uh.UpdateMe)
	r.DELETE("/users/me", uh.DeleteMe)
	r.GET("/users/:user_id", uh.Get)
	r.PATCH("/users/:user_id/flags", uh.SetFlags)
	return r, issuer
}

func serve(r http.Handler, method, target string, body interface{}, header string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestReportHandler_ListByObject_BindsQuery(t *testing.T) {
	// Arrange
	reports := new(MockReportService)
	r, _ := newTestEngine(t, reports, new(MockUserService))
	next := 3
	reports.On("ListByObject", mock.Anything, mock.MatchedBy(func(q *filter.QueryByObject) bool {
		return q.PageNumber == 2 && q.PageSize == 5 && q.Object == "^M3" &&
			q.OrderBy == "count" && q.Direction == 1 &&
			q.DateAfter.Time().Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	})).Return(&schema.Paginated[schema.ReportByObject]{
		Count:   11,
		Next:    &next,
		Results: []schema.ReportByObject{{Object: "M31", Count: 2}},
	}, nil)

	// Act
	w := serve(r, http.MethodGet, "/reports?page=2&page_size=5&object=%5EM3&order_by=count&direction=1&date_after=2023-01-01", nil, "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(11), body["count"])
	assert.Equal(t, float64(3), body["next"])
	assert.Nil(t, body["previous"])
	reports.AssertExpectations(t)
}

func TestReportHandler_ListByObject_Defaults(t *testing.T) {
	reports := new(MockReportService)
	r, _ := newTestEngine(t, reports, new(MockUserService))
	reports.On("ListByObject", mock.Anything, mock.MatchedBy(func(q *filter.QueryByObject) bool {
		return q.PageNumber == 1 && q.PageSize == 10 && q.Direction == -1 && q.Owner() == ""
	})).Return(&schema.Paginated[schema.ReportByObject]{Results: []schema.ReportByObject{}}, nil)

	w := serve(r, http.MethodGet, "/reports", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	reports.AssertExpectations(t)
}

func TestReportHandler_InvalidQuery(t *testing.T) {
	reports := new(MockReportService)
	r, _ := newTestEngine(t, reports, new(MockUserService))

	w := serve(r, http.MethodGet, "/reports/list?date_after=yesterday", nil, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	reports.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestReportHandler_OwnedUsesAuthenticatedUser(t *testing.T) {
	reports := new(MockReportService)
	r, issuer := newTestEngine(t, reports, new(MockUserService))
	reports.On("CountByUser", mock.Anything, mock.MatchedBy(func(q *filter.QueryByUser) bool {
		return q.Owned && q.Owner() == "alice"
	})).Return([]schema.ReportByUser{{User: "alice", Count: 4}}, nil)

	w := serve(r, http.MethodGet, "/reports/count_by_user?owned=true", nil, bearer(t, issuer))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"user":"alice","count":4}]`, w.Body.String())
}

func TestReportHandler_CountByDay_ServiceError(t *testing.T) {
	reports := new(MockReportService)
	r, _ := newTestEngine(t, reports, new(MockUserService))
	reports.On("CountByDay", mock.Anything, mock.Anything).
		Return(nil, errors.StoreUnavailable(stderrors.New("no reachable servers")))

	w := serve(r, http.MethodGet, "/reports/count_by_day", nil, "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", errorCode(t, w))
}

func TestReportHandler_ExportCSV(t *testing.T) {
	reports := new(MockReportService)
	r, _ := newTestEngine(t, reports, new(MockUserService))
	first := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	reports.On("ExportByObject", mock.Anything, mock.Anything).Return([]schema.ReportByObject{
		{Object: "M31", FirstDate: first, LastDate: first.Add(time.Hour), Count: 2, ReportTypes: []string{"TOM", "SN"}, Sources: []string{"ZTF"}},
	}, nil)

	w := serve(r, http.MethodGet, "/reports/csv?type=TOM", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=TOM_"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "object,first_date,last_date,count,report_types,sources", lines[0])
	assert.Equal(t, "M31,2023-01-01T00:00:00Z,2023-01-01T01:00:00Z,2,TOM;SN,ZTF", lines[1])
}

func TestReportHandler_Create(t *testing.T) {
	// Arrange
	reports := new(MockReportService)
	r, issuer := newTestEngine(t, reports, new(MockUserService))
	id := primitive.NewObjectID()
	in := schema.ReportIn{Object: "M31", Source: "ZTF", Observation: "bright", ReportType: "TOM"}
	reports.On("Create", mock.Anything, "alice", &in).
		Return(&schema.ReportOut{ID: id, Object: "M31", Owner: "alice"}, nil)

	// Act
	w := serve(r, http.MethodPost, "/reports", in, bearer(t, issuer))

	// Assert
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out schema.ReportOut
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, id, out.ID)
	assert.Equal(t, "alice", out.Owner)
}

func TestReportHandler_CreateMalformedBody(t *testing.T) {
	reports := new(MockReportService)
	r, issuer := newTestEngine(t, reports, new(MockUserService))

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, issuer))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_GetNotFound(t *testing.T) {
	reports := new(MockReportService)
	r, _ := newTestEngine(t, reports, new(MockUserService))
	reports.On("Get", mock.Anything, "missing").Return(nil, errors.DocumentNotFound("missing"))

	w := serve(r, http.MethodGet, "/reports/missing", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestReportHandler_UpdateForbidden(t *testing.T) {
	reports := new(MockReportService)
	r, issuer := newTestEngine(t, reports, new(MockUserService))
	reports.On("Update", mock.Anything, "alice", "abc", mock.Anything).Return(nil, errors.ErrForbidden)

	w := serve(r, http.MethodPatch, "/reports/abc", map[string]interface{}{"solved": true}, bearer(t, issuer))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestReportHandler_Replace(t *testing.T) {
	reports := new(MockReportService)
	r, issuer := newTestEngine(t, reports, new(MockUserService))
	in := schema.ReportIn{Object: "M1", Solved: true, Source: "s", Observation: "o", ReportType: "t"}
	reports.On("Replace", mock.Anything, "alice", "abc", &in).Return(&schema.ReportOut{Object: "M1", Solved: true}, nil)

	w := serve(r, http.MethodPut, "/reports/abc", in, bearer(t, issuer))

	assert.Equal(t, http.StatusOK, w.Code)
	reports.AssertExpectations(t)
}

func TestReportHandler_Delete(t *testing.T) {
	reports := new(MockReportService)
	r, issuer := newTestEngine(t, reports, new(MockUserService))
	reports.On("Delete", mock.Anything, "alice", "abc").Return(nil)

	w := serve(r, http.MethodDelete, "/reports/abc", nil, bearer(t, issuer))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestUserHandler_Register(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	signup := schema.UserSignup{FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "ada@example.com", Password: "correct-horse"}
	users.On("Register", mock.Anything, &signup).Return(&schema.UserOut{FirstName: "Ada"}, nil)

	w := serve(r, http.MethodPost, "/users", signup, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "correct-horse")
}

func TestUserHandler_Login(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	users.On("Login", mock.Anything, &schema.UserLogin{Username: "ada", Password: "pw"}).
		Return(&schema.Token{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 3600}, nil)

	w := serve(r, http.MethodPost, "/users/login", map[string]string{"username": "ada", "password": "pw"}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`, w.Body.String())
}

func TestUserHandler_LoginRejected(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	users.On("Login", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeUnauthorized, "invalid username or password"))

	w := serve(r, http.MethodPost, "/users/login", map[string]string{"username": "ada", "password": "bad"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_VerifyToken(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	users.On("VerifyToken", mock.Anything, &schema.TokenIn{Token: "tok"}).
		Return(&schema.TokenValidity{Valid: false}, nil)

	w := serve(r, http.MethodPost, "/users/token/verify", map[string]string{"token": "tok"}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":false}`, w.Body.String())
}

func TestUserHandler_VerifyTokenRequiresToken(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	users.On("VerifyToken", mock.Anything, &schema.TokenIn{}).
		Return(nil, errors.Validation("invalid input"))

	w := serve(r, http.MethodPost, "/users/token/verify", map[string]string{}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUserHandler_RefreshExchangesRefreshToken(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	users.On("Refresh", mock.Anything, &schema.RefreshIn{RefreshToken: "refresh-tok"}).
		Return(&schema.Token{AccessToken: "fresh", RefreshToken: "next", TokenType: "bearer", ExpiresIn: 3600}, nil)

	w := serve(r, http.MethodPost, "/users/token/refresh", map[string]string{"refresh_token": "refresh-tok"}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"fresh"`)
	assert.Contains(t, w.Body.String(), `"refresh_token":"next"`)
	users.AssertExpectations(t)
}

func TestUserHandler_RefreshRejectsExpiredRefreshToken(t *testing.T) {
	users := new(MockUserService)
	r, _ := newTestEngine(t, new(MockReportService), users)
	users.On("Refresh", mock.Anything, &schema.RefreshIn{RefreshToken: "stale"}).
		Return(nil, errors.New(errors.ErrCodeUnauthorized, "invalid refresh token"))

	w := serve(r, http.MethodPost, "/users/token/refresh", map[string]string{"refresh_token": "stale"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_MeUsesTokenSubject(t *testing.T) {
	users := new(MockUserService)
	r, issuer := newTestEngine(t, new(MockReportService), users)
	users.On("Get", mock.Anything, testUserID).Return(&schema.UserOut{FirstName: "Alice"}, nil)

	w := serve(r, http.MethodGet, "/users/me", nil, bearer(t, issuer))

	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}

func TestUserHandler_UpdateMeAndDeleteMe(t *testing.T) {
	users := new(MockUserService)
	r, issuer := newTestEngine(t, new(MockReportService), users)
	institution := "CMM"
	users.On("Update", mock.Anything, testUserID, &schema.UserUpdate{Institution: &institution}).
		Return(&schema.UserOut{Institution: institution}, nil)
	users.On("Delete", mock.Anything, testUserID).Return(nil)

	w := serve(r, http.MethodPatch, "/users/me", map[string]string{"institution": "CMM"}, bearer(t, issuer))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodDelete, "/users/me", nil, bearer(t, issuer))
	assert.Equal(t, http.StatusNoContent, w.Code)
	users.AssertExpectations(t)
}

func TestUserHandler_SetFlags(t *testing.T) {
	users := new(MockUserService)
	r, issuer := newTestEngine(t, new(MockReportService), users)
	verified := true
	users.On("SetFlags", mock.Anything, "u1", &schema.UserFlags{Verified: &verified}).
		Return(&schema.UserOut{Verified: true}, nil)

	w := serve(r, http.MethodPatch, "/users/u1/flags", map[string]bool{"verified": true}, bearer(t, issuer))

	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}
