package service

import (
	"context"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/logger"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"go.uber.org/zap"
)

type CourseRepo interface {
	Create(course *model.Course) error
	FindByID(id uint) (*model.Course, error)
	FindDetail(id uint) (*model.Course, error)
	List(filter repository.CourseFilter, page, limit int) ([]model.Course, int64, error)
	Update(course *model.Course) error
	Delete(id uint) error

	CreateSection(s *model.Section) error
	FindSectionByID(id uint) (*model.Section, error)
	UpdateSection(s *model.Section) error
	DeleteSection(id uint) error

	CreateLesson(l *model.Lesson) error
	FindLessonByID(id uint) (*model.Lesson, error)
	UpdateLesson(l *model.Lesson) error
	DeleteLesson(id uint) error
	UpdateLessonAsset(id uint, key, url string, durationSeconds int) error
}

// ObjectStore 课程模块用到的存储能力
type ObjectStore interface {
	UploadObject(ctx context.Context, reader io.Reader, size int64, originalName, folder, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

type CourseService struct {
	Repo    CourseRepo
	Storage ObjectStore
	// Probe 获取媒体时长（秒）
	Probe func(path string) (int, error)
}

func NewCourseService(repo CourseRepo, storage ObjectStore) *CourseService {
	return &CourseService{Repo: repo, Storage: storage, Probe: util.ProbeDuration}
}

type CourseRequest struct {
	Title        string             `json:"title" binding:"required"`
	Description  string             `json:"description"`
	Category     string             `json:"category" binding:"required"`
	Level        string             `json:"level"`
	Price        int64              `json:"price" binding:"min=0"`
	Status       model.CourseStatus `json:"status" binding:"omitempty,oneof=draft published archived"`
	ThumbnailURL string             `json:"thumbnailUrl"`
}

type SectionRequest struct {
	CourseID uint   `json:"courseId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Order    int    `json:"order"`
}

type LessonRequest struct {
	CourseID  uint             `json:"courseId" binding:"required"`
	SectionID *uint            `json:"sectionId"`
	Title     string           `json:"title" binding:"required"`
	Type      model.LessonType `json:"type" binding:"required,oneof=video pdf audio"`
	Order     int              `json:"order"`
	IsPreview bool             `json:"isPreview"`
}

func (s *CourseService) ListPublished(category, keyword string, page, limit int) ([]model.Course, int64, error) {
	cs, total, err := s.Repo.List(repository.CourseFilter{
		Status:   model.CoursePublished,
		Category: category,
		Keyword:  keyword,
	}, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return cs, total, nil
}

func (s *CourseService) GetPublished(id uint) (*model.Course, error) {
	c, err := s.Repo.FindDetail(id)
	if err != nil {
		return nil, lookupErr(err, "course", id)
	}
	if c.Status != model.CoursePublished {
		return nil, util.NotFoundf("course %d not found", id)
	}
	return c, nil
}

// ListManaged 返回自己的课程，管理员返回全部
func (s *CourseService) ListManaged(viewer *util.Claims, status model.CourseStatus, page, limit int) ([]model.Course, int64, error) {
	filter := repository.CourseFilter{Status: status}
	if viewer.Role != model.Admin {
		filter.TeacherID = viewer.UserID
	}
	cs, total, err := s.Repo.List(filter, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return cs, total, nil
}

func (s *CourseService) ownedCourse(viewer *util.Claims, id uint) (*model.Course, error) {
	c, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "course", id)
	}
	if viewer.Role != model.Admin && c.TeacherID != viewer.UserID {
		return nil, util.Forbiddenf("course %d belongs to another teacher", id)
	}
	return c, nil
}

func (s *CourseService) GetManaged(viewer *util.Claims, id uint) (*model.Course, error) {
	if _, err := s.ownedCourse(viewer, id); err != nil {
		return nil, err
	}
	c, err := s.Repo.FindDetail(id)
	if err != nil {
		return nil, lookupErr(err, "course", id)
	}
	return c, nil
}

func applyCourse(c *model.Course, req CourseRequest) {
	c.Title = req.Title
	c.Description = req.Description
	c.Category = req.Category
	c.Level = req.Level
	c.Price = req.Price
	c.ThumbnailURL = req.ThumbnailURL
	if req.Status != "" {
		c.Status = req.Status
	}
}

func (s *CourseService) CreateCourse(viewer *util.Claims, req CourseRequest) (*model.Course, error) {
	if req.Price < 0 {
		return nil, util.Validationf("price must not be negative")
	}
	c := &model.Course{TeacherID: viewer.UserID, Status: model.CourseDraft}
	applyCourse(c, req)
	if err := s.Repo.Create(c); err != nil {
		return nil, storeErr(err)
	}
	logger.Log.Info("course created", zap.Uint("courseID", c.ID), zap.Uint("teacherID", c.TeacherID))
	return c, nil
}

func (s *CourseService) UpdateCourse(viewer *util.Claims, id uint, req CourseRequest) (*model.Course, error) {
	if req.Price < 0 {
		return nil, util.Validationf("price must not be negative")
	}
	c, err := s.ownedCourse(viewer, id)
	if err != nil {
		return nil, err
	}
	applyCourse(c, req)
	if err := s.Repo.Update(c); err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

func (s *CourseService) DeleteCourse(viewer *util.Claims, id uint) error {
	if _, err := s.ownedCourse(viewer, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *CourseService) CreateSection(viewer *util.Claims, req SectionRequest) (*model.Section, error) {
	if _, err := s.ownedCourse(viewer, req.CourseID); err != nil {
		return nil, err
	}
	sec := &model.Section{CourseID: req.CourseID, Title: req.Title, Order: req.Order}
	if err := s.Repo.CreateSection(sec); err != nil {
		return nil, storeErr(err)
	}
	return sec, nil
}

func (s *CourseService) ownedSection(viewer *util.Claims, id uint) (*model.Section, error) {
	sec, err := s.Repo.FindSectionByID(id)
	if err != nil {
		return nil, lookupErr(err, "section", id)
	}
	if _, err := s.ownedCourse(viewer, sec.CourseID); err != nil {
		return nil, err
	}
	return sec, nil
}

// UpdateSection 只允许修改标题和排序，不能移动到其他课程
func (s *CourseService) UpdateSection(viewer *util.Claims, id uint, req SectionRequest) (*model.Section, error) {
	sec, err := s.ownedSection(viewer, id)
	if err != nil {
		return nil, err
	}
	sec.Title = req.Title
	sec.Order = req.Order
	if err := s.Repo.UpdateSection(sec); err != nil {
		return nil, storeErr(err)
	}
	return sec, nil
}

func (s *CourseService) DeleteSection(viewer *util.Claims, id uint) error {
	if _, err := s.ownedSection(viewer, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteSection(id); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *CourseService) checkLessonSection(req LessonRequest) error {
	if req.SectionID == nil {
		return nil
	}
	sec, err := s.Repo.FindSectionByID(*req.SectionID)
	if err != nil {
		return lookupErr(err, "section", *req.SectionID)
	}
	if sec.CourseID != req.CourseID {
		return util.Validationf("section %d is not part of course %d", sec.ID, req.CourseID)
	}
	return nil
}

func (s *CourseService) CreateLesson(viewer *util.Claims, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.ownedCourse(viewer, req.CourseID); err != nil {
		return nil, err
	}
	if err := s.checkLessonSection(req); err != nil {
		return nil, err
	}

	l := &model.Lesson{
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		Title:     req.Title,
		Type:      req.Type,
		Order:     req.Order,
		IsPreview: req.IsPreview,
	}
	if err := s.Repo.CreateLesson(l); err != nil {
		return nil, storeErr(err)
	}
	return l, nil
}

func (s *CourseService) ownedLesson(viewer *util.Claims, id uint) (*model.Lesson, error) {
	l, err := s.Repo.FindLessonByID(id)
	if err != nil {
		return nil, lookupErr(err, "lesson", id)
	}
	if _, err := s.ownedCourse(viewer, l.CourseID); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *CourseService) UpdateLesson(viewer *util.Claims, id uint, req LessonRequest) (*model.Lesson, error) {
	l, err := s.ownedLesson(viewer, id)
	if err != nil {
		return nil, err
	}
	req.CourseID = l.CourseID
	if err := s.checkLessonSection(req); err != nil {
		return nil, err
	}
	if req.Type != l.Type && l.AssetKey != "" {
		return nil, util.Validationf("lesson %d already has a %s asset", id, l.Type)
	}

	l.SectionID = req.SectionID
	l.Title = req.Title
	l.Type = req.Type
	l.Order = req.Order
	l.IsPreview = req.IsPreview
	if err := s.Repo.UpdateLesson(l); err != nil {
		return nil, storeErr(err)
	}
	return l, nil
}

func (s *CourseService) DeleteLesson(ctx context.Context, viewer *util.Claims, id uint) error {
	l, err := s.ownedLesson(viewer, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteLesson(id); err != nil {
		return storeErr(err)
	}
	s.removeObject(ctx, l.AssetKey)
	return nil
}

// removeObject 删除不再引用的对象，失败只会留下垃圾文件
func (s *CourseService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.Storage.Delete(ctx, key); err != nil {
		logger.Log.Warn("删除旧文件失败", zap.String("key", key), zap.Error(err))
	}
}

func allowedLessonMime(t model.LessonType) []string {
	switch t {
	case model.LessonVideo:
		return []string{util.MimeVideo}
	case model.LessonAudio:
		return []string{util.MimeAudio}
	case model.LessonPDF:
		return []string{util.MimePDF}
	}
	return nil
}

// UploadLessonAsset 文件存到 lessons/<课程ID> 下并记录到课时
func (s *CourseService) UploadLessonAsset(ctx context.Context, viewer *util.Claims, lessonID uint, file *multipart.FileHeader) (*model.Lesson, error) {
	l, err := s.ownedLesson(viewer, lessonID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	mimeType, err := util.ValidateMimeType(src, allowedLessonMime(l.Type))
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var (
		body     io.Reader = src
		duration           = l.DurationSeconds
	)
	if l.Type == model.LessonVideo || l.Type == model.LessonAudio {
		tmpPath, err := spoolToTemp(src)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmpPath)

		// 探测失败时时长清零，不沿用旧文件的时长
		duration, err = s.Probe(tmpPath)
		if err != nil {
			logger.Log.Warn("获取媒体时长失败", zap.Uint("lessonID", l.ID), zap.Error(err))
			duration = 0
		}

		f, err := os.Open(tmpPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		body = f
	}

	res, err := s.Storage.UploadObject(ctx, body, file.Size, file.Filename, fmt.Sprintf("lessons/%d", l.CourseID), mimeType)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateLessonAsset(l.ID, res.Key, res.URL, duration); err != nil {
		// 数据库写入失败时回收刚上传的对象
		s.removeObject(ctx, res.Key)
		return nil, storeErr(err)
	}

	oldKey := l.AssetKey
	l.AssetKey = res.Key
	l.AssetURL = res.URL
	l.DurationSeconds = duration
	if oldKey != res.Key {
		s.removeObject(ctx, oldKey)
	}

	logger.Log.Info("lesson asset uploaded",
		zap.Uint("lessonID", l.ID),
		zap.String("key", res.Key),
		zap.Int("durationSeconds", duration),
	)
	return l, nil
}

func spoolToTemp(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "lesson-asset-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
