package repository

import (
	"english_edu_backend/internal/model"

	"gorm.io/gorm"
)

type CourseFilter struct {
	Status    model.CourseStatus
	Category  string
	TeacherID uint
	Keyword   string
}

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.First(&c, id).Error
	return &c, err
}

// FindDetail 加载课程及其章节、课时，按展示顺序排列
func (r *CourseRepository) FindDetail(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, id asc")
		}).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, id asc")
		}).
		First(&c, id).Error
	return &c, err
}

func (r *CourseRepository) List(filter CourseFilter, page, limit int) ([]model.Course, int64, error) {
	var cs []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.TeacherID > 0 {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.Keyword != "" {
		query = query.Where("title LIKE ?", "%"+filter.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Sections", "Lessons").Save(course).Error
}

// Delete 删除课程及其下的章节和课时
func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Section{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

func (r *CourseRepository) CreateSection(s *model.Section) error {
	return r.DB.Create(s).Error
}

func (r *CourseRepository) FindSectionByID(id uint) (*model.Section, error) {
	var s model.Section
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *CourseRepository) UpdateSection(s *model.Section) error {
	return r.DB.Save(s).Error
}

// DeleteSection 章节删除后课时保留，仅解除归属
func (r *CourseRepository) DeleteSection(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Lesson{}).Where("section_id = ?", id).Update("section_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Section{}, id).Error
	})
}

func (r *CourseRepository) CreateLesson(l *model.Lesson) error {
	return r.DB.Create(l).Error
}

func (r *CourseRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.First(&l, id).Error
	return &l, err
}

func (r *CourseRepository) UpdateLesson(l *model.Lesson) error {
	return r.DB.Save(l).Error
}

func (r *CourseRepository) DeleteLesson(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

// UpdateLessonAsset 记录上传的文件及时长
func (r *CourseRepository) UpdateLessonAsset(id uint, key, url string, durationSeconds int) error {
	updates := map[string]interface{}{
		"asset_key":        key,
		"asset_url":        url,
		"duration_seconds": durationSeconds,
	}
	return r.DB.Model(&model.Lesson{}).Where("id = ?", id).Updates(updates).Error
}
