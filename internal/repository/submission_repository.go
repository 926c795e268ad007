package repository

import (
	"english_edu_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.DB.Create(s).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *SubmissionRepository) CountAttempts(examID, learnerID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Submission{}).
		Where("exam_id = ? AND learner_id = ?", examID, learnerID).
		Count(&n).Error
	return n, err
}

func (r *SubmissionRepository) ListByLearner(learnerID uint, page, limit int) ([]model.Submission, int64, error) {
	return r.list(r.DB.Where("learner_id = ?", learnerID), page, limit)
}

func (r *SubmissionRepository) ListByExam(examID uint, page, limit int) ([]model.Submission, int64, error) {
	return r.list(r.DB.Where("exam_id = ?", examID), page, limit)
}

func (r *SubmissionRepository) list(scope *gorm.DB, page, limit int) ([]model.Submission, int64, error) {
	var ss []model.Submission
	var total int64

	query := scope.Model(&model.Submission{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("submitted_at desc, id desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}
