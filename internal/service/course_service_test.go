package service

import (
	"bytes"
	"context"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository/inmem"
	"english_edu_backend/internal/util"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mp4Header is the smallest prefix net/http sniffs as video/mp4.
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

type courseFixture struct {
	svc    *CourseService
	root   string
	course *model.Course
}

func newCourseService(t *testing.T) courseFixture {
	t.Helper()
	storage, root := newLocalStorage(t)
	ids := 0
	storage.NewID = func() string {
		ids++
		return fmt.Sprintf("obj%d", ids)
	}

	svc := NewCourseService(inmem.NewCourseRepository(inmem.NewDB()), storage)
	svc.Probe = func(string) (int, error) { return 95, nil }

	c, err := svc.CreateCourse(teacherClaims, CourseRequest{Title: "IELTS Speaking", Category: "ielts", Price: 9900})
	require.NoError(t, err)
	return courseFixture{svc: svc, root: root, course: c}
}

func TestCourse_OwnershipAndPublication(t *testing.T) {
	fx := newCourseService(t)
	svc := fx.svc

	assert.Equal(t, model.CourseDraft, fx.course.Status)
	_, err := svc.GetPublished(fx.course.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.UpdateCourse(otherTeacher, fx.course.ID, CourseRequest{Title: "x", Category: "ielts"})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = svc.UpdateCourse(teacherClaims, fx.course.ID, CourseRequest{
		Title: "IELTS Speaking", Category: "ielts", Price: 9900, Status: model.CoursePublished,
	})
	require.NoError(t, err)

	sec, err := svc.CreateSection(teacherClaims, SectionRequest{CourseID: fx.course.ID, Title: "Part 2", Order: 2})
	require.NoError(t, err)
	_, err = svc.CreateSection(teacherClaims, SectionRequest{CourseID: fx.course.ID, Title: "Part 1", Order: 1})
	require.NoError(t, err)
	_, err = svc.CreateLesson(teacherClaims, LessonRequest{CourseID: fx.course.ID, SectionID: &sec.ID, Title: "Cue cards", Type: model.LessonPDF})
	require.NoError(t, err)

	c, err := svc.GetPublished(fx.course.ID)
	require.NoError(t, err)
	require.Len(t, c.Sections, 2)
	assert.Equal(t, "Part 1", c.Sections[0].Title)
	assert.Len(t, c.Lessons, 1)

	list, total, err := svc.ListPublished("ielts", "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.DeleteCourse(otherTeacher, fx.course.ID), util.ErrForbidden)
	require.NoError(t, svc.DeleteCourse(adminClaims, fx.course.ID))
	_, err = svc.GetPublished(fx.course.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCreateLesson_SectionMustBelongToCourse(t *testing.T) {
	fx := newCourseService(t)
	other, err := fx.svc.CreateCourse(teacherClaims, CourseRequest{Title: "TOEIC", Category: "toeic"})
	require.NoError(t, err)
	sec, err := fx.svc.CreateSection(teacherClaims, SectionRequest{CourseID: other.ID, Title: "S"})
	require.NoError(t, err)

	_, err = fx.svc.CreateLesson(teacherClaims, LessonRequest{CourseID: fx.course.ID, SectionID: &sec.ID, Title: "L", Type: model.LessonAudio})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestUploadLessonAsset_Video(t *testing.T) {
	fx := newCourseService(t)
	lesson, err := fx.svc.CreateLesson(teacherClaims, LessonRequest{CourseID: fx.course.ID, Title: "Intro", Type: model.LessonVideo})
	require.NoError(t, err)

	content := append(append([]byte{}, mp4Header...), bytes.Repeat([]byte{0}, 64)...)
	got, err := fx.svc.UploadLessonAsset(context.Background(), teacherClaims, lesson.ID, formFile(t, "intro.MP4", content))
	require.NoError(t, err)

	wantKey := fmt.Sprintf("lessons/%d/obj1.mp4", fx.course.ID)
	assert.Equal(t, wantKey, got.AssetKey)
	assert.Equal(t, "https://files.example.com/"+wantKey, got.AssetURL)
	assert.Equal(t, 95, got.DurationSeconds)
	assert.FileExists(t, filepath.Join(fx.root, filepath.FromSlash(wantKey)))

	// replacing the asset removes the previous object
	fx.svc.Probe = func(string) (int, error) { return 0, errors.New("ffprobe not installed") }
	again, err := fx.svc.UploadLessonAsset(context.Background(), teacherClaims, lesson.ID, formFile(t, "intro2.mp4", content))
	require.NoError(t, err)
	assert.Zero(t, again.DurationSeconds, "failed probe does not carry over the old duration")
	stored, err := fx.svc.Repo.FindLessonByID(lesson.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.DurationSeconds)
	assert.NoFileExists(t, filepath.Join(fx.root, filepath.FromSlash(wantKey)))
	_, err = os.Stat(filepath.Join(fx.root, filepath.FromSlash(again.AssetKey)))
	assert.NoError(t, err)
}

func TestUploadLessonAsset_RejectsWrongType(t *testing.T) {
	fx := newCourseService(t)
	lesson, err := fx.svc.CreateLesson(teacherClaims, LessonRequest{CourseID: fx.course.ID, Title: "Workbook", Type: model.LessonPDF})
	require.NoError(t, err)

	_, err = fx.svc.UploadLessonAsset(context.Background(), teacherClaims, lesson.ID, formFile(t, "fake.pdf", []byte("just some text")))
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = fx.svc.UploadLessonAsset(context.Background(), otherTeacher, lesson.ID, formFile(t, "w.pdf", []byte("%PDF-1.7")))
	assert.ErrorIs(t, err, util.ErrForbidden)

	got, err := fx.svc.UploadLessonAsset(context.Background(), teacherClaims, lesson.ID, formFile(t, "w.pdf", []byte("%PDF-1.7\n")))
	require.NoError(t, err)
	assert.Zero(t, got.DurationSeconds)
}
