package controller

import (
	"bytes"
	"encoding/json"
	"english_edu_backend/internal/config"
	"english_edu_backend/internal/middleware"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository/inmem"
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/security"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testUploadLimit = 4 << 10

type testServer struct {
	cfg         *config.Config
	router      *gin.Engine
	users       *inmem.UserRepository
	courses     *inmem.CourseRepository
	storageRoot string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	db := inmem.NewDB()
	users := inmem.NewUserRepository(db)
	courses := inmem.NewCourseRepository(db)
	exams := inmem.NewExamRepository(db)

	root := t.TempDir()
	storage := &service.StorageService{
		Provider: &service.LocalStorageProvider{Root: root, BaseURL: "/uploads"},
		NewID:    func() string { return "fixed" },
	}
	courseService := service.NewCourseService(courses, storage)
	courseService.Probe = func(string) (int, error) { return 30, nil }

	auth := NewAuthController(service.NewAuthService(users, cfg))
	course := NewCourseController(courseService)
	upload := NewUploadController(storage)
	question := NewQuestionController(service.NewQuestionService(exams))
	exam := NewExamController(service.NewExamService(exams, service.NewExamCache(nil)))
	submission := NewSubmissionController(service.NewSubmissionService(exams, inmem.NewSubmissionRepository(db)))
	order := NewOrderController(service.NewOrderService(inmem.NewOrderRepository(db), courses))
	user := NewUserController(service.NewUserService(users))

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)
	api.GET("/courses", course.ListPublished)
	api.GET("/courses/:id", course.GetPublished)
	api.GET("/exams/published", exam.ListPublished)
	api.GET("/exams/:id", middleware.TryAuthMiddleware(cfg), exam.GetExam)

	authed := r.Group("/api", middleware.AuthMiddleware(cfg))
	authed.GET("/profile", auth.GetProfile)
	authed.POST("/exams/:id/submit", submission.SubmitExam)
	authed.GET("/submissions/my", submission.ListMine)
	authed.GET("/submissions/:id", submission.GetSubmission)
	authed.POST("/orders", order.Checkout)
	authed.POST("/orders/:id/pay", order.Pay)
	authed.POST("/orders/:id/cancel", order.Cancel)
	authed.GET("/enrollments/my", order.ListEnrollments)

	staff := authed.Group("", middleware.RoleMiddleware(model.Teacher, model.Admin))
	staff.POST("/exams", exam.CreateExam)
	staff.GET("/exams/:id/submissions", submission.ListForExam)
	staff.POST("/questions", question.CreateQuestion)
	staff.GET("/questions", question.ListQuestions)
	staff.DELETE("/questions/:id", question.DeleteQuestion)
	staff.POST("/teacher/courses", course.CreateCourse)
	staff.PUT("/teacher/courses/:id", course.UpdateCourse)
	staff.POST("/teacher/lessons", course.CreateLesson)
	staff.POST("/teacher/uploads", security.BodyLimit(testUploadLimit), upload.Upload)
	staff.DELETE("/teacher/uploads", upload.Delete)

	admin := r.Group("/api/admin", middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	admin.PATCH("/exams/:id/approval", exam.SetApproval)
	admin.GET("/users", user.GetUsers)
	admin.PATCH("/users/:id/status", user.SetStatus)

	return &testServer{cfg: cfg, router: r, users: users, courses: courses, storageRoot: root}
}

// token issues a JWT for an account that exists in the user store.
func (s *testServer) token(t *testing.T, email string, role model.UserRole) string {
	t.Helper()
	u := &model.User{Name: email, Email: email, Password: "x", Role: role}
	require.NoError(t, s.users.Create(u))
	tok, err := util.GenerateJWT(u, s.cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	return tok
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var res apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	}
	return rec, res
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}
