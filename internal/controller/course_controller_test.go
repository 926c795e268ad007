package controller

import (
	"bytes"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCourse(t *testing.T, s *testServer, teacher string, price int64, publish bool) model.Course {
	t.Helper()
	rec, res := s.do(t, http.MethodPost, "/api/teacher/courses", teacher, map[string]interface{}{
		"title": "IELTS Listening", "category": "ielts", "price": price,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[model.Course](t, res.Data)
	assert.Equal(t, model.CourseDraft, c.Status)

	if publish {
		rec, res = s.do(t, http.MethodPut, fmt.Sprintf("/api/teacher/courses/%d", c.ID), teacher, map[string]interface{}{
			"title": c.Title, "category": c.Category, "price": price, "status": "published",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		c = decode[model.Course](t, res.Data)
	}
	return c
}

func TestCatalogShowsOnlyPublishedCourses(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)
	draft := createCourse(t, s, teacher, 0, false)
	live := createCourse(t, s, teacher, 0, true)

	rec, res := s.do(t, http.MethodGet, "/api/courses?category=ielts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[util.PageResponse](t, res.Data).Total)

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", draft.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", live.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOtherTeacherCannotEditCourse(t *testing.T) {
	s := newTestServer(t)
	owner := s.token(t, "owner@example.com", model.Teacher)
	other := s.token(t, "other@example.com", model.Teacher)
	c := createCourse(t, s, owner, 0, false)

	rec, _ := s.do(t, http.MethodPut, fmt.Sprintf("/api/teacher/courses/%d", c.ID), other, map[string]interface{}{
		"title": "mine now", "category": "ielts",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/teacher/lessons", other, map[string]interface{}{
		"courseId": c.ID, "title": "Intro", "type": "video",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckoutFreeCourseEnrollsImmediately(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)
	learner := s.token(t, "learner@example.com", model.Learner)
	c := createCourse(t, s, teacher, 0, true)

	rec, res := s.do(t, http.MethodPost, "/api/orders", learner, map[string]interface{}{"courseId": c.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[service.CheckoutResult](t, res.Data)
	assert.Equal(t, model.OrderPaid, out.Order.Status)
	require.NotNil(t, out.Enrollment)

	rec, _ = s.do(t, http.MethodPost, "/api/orders", learner, map[string]interface{}{"courseId": c.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, res = s.do(t, http.MethodGet, "/api/enrollments/my", learner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Enrollment](t, res.Data), 1)
}

func TestPaidCourseCheckoutAndPay(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)
	learner := s.token(t, "learner@example.com", model.Learner)
	other := s.token(t, "other@example.com", model.Learner)
	c := createCourse(t, s, teacher, 19900, true)

	rec, res := s.do(t, http.MethodPost, "/api/orders", learner, map[string]interface{}{"courseId": c.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decode[service.CheckoutResult](t, res.Data)
	assert.Equal(t, model.OrderPending, out.Order.Status)
	assert.EqualValues(t, 19900, out.Order.Amount)
	assert.Nil(t, out.Enrollment)

	payPath := fmt.Sprintf("/api/orders/%d/pay", out.Order.ID)
	rec, _ = s.do(t, http.MethodPost, payPath, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, res = s.do(t, http.MethodPost, payPath, learner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode[service.CheckoutResult](t, res.Data).Enrollment)

	rec, _ = s.do(t, http.MethodPost, payPath, learner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", out.Order.ID), learner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutDraftCourseNotFound(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)
	learner := s.token(t, "learner@example.com", model.Learner)
	c := createCourse(t, s, teacher, 0, false)

	rec, _ := s.do(t, http.MethodPost, "/api/orders", learner, map[string]interface{}{"courseId": c.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func uploadRequest(t *testing.T, filename string, content []byte, folder string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if folder != "" {
		require.NoError(t, w.WriteField("folder", folder))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/teacher/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAndDelete(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)
	claims, err := util.ParseJWT(teacher, s.cfg.JWT.Secret)
	require.NoError(t, err)
	prefix := fmt.Sprintf("uploads/%d/", claims.UserID)

	rec, res := s.send(t, uploadRequest(t, "Cover.PNG", pngHeader, "covers"), teacher)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decode[service.UploadResult](t, res.Data)
	assert.Equal(t, prefix+"covers/fixed.png", up.Key)
	assert.Equal(t, "/uploads/"+prefix+"covers/fixed.png", up.URL)

	rec, _ = s.do(t, http.MethodDelete, "/api/teacher/uploads?key="+up.Key, teacher, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/teacher/uploads?key="+prefix+"../etc/passwd", teacher, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDelete_OtherOwnersKeys(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "alice@example.com", model.Teacher)
	bob := s.token(t, "bob@example.com", model.Teacher)
	admin := s.token(t, "admin@example.com", model.Admin)

	rec, res := s.send(t, uploadRequest(t, "cover.png", pngHeader, "covers"), alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decode[service.UploadResult](t, res.Data)

	for _, key := range []string{up.Key, "lessons/7/asset.mp4"} {
		rec, _ = s.do(t, http.MethodDelete, "/api/teacher/uploads?key="+key, bob, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, key)
	}
	_, err := os.Stat(filepath.Join(s.storageRoot, filepath.FromSlash(up.Key)))
	assert.NoError(t, err, "file survives a foreign delete")

	rec, _ = s.do(t, http.MethodDelete, "/api/teacher/uploads?key="+up.Key, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpload_ChunkedBodyOverLimit(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, testUploadLimit)...)
	req := uploadRequest(t, "cover.png", big, "covers")
	req.ContentLength = -1
	rec, _ := s.send(t, req, teacher)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestUploadRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "teacher@example.com", model.Teacher)
	learner := s.token(t, "learner@example.com", model.Learner)

	rec, _ := s.send(t, uploadRequest(t, "notes.txt", []byte("plain text"), "docs"), teacher)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.send(t, uploadRequest(t, "cover.png", pngHeader, ""), teacher)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.send(t, uploadRequest(t, "cover.png", pngHeader, "covers"), learner)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
