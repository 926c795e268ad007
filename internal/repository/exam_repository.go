package repository

import (
	"english_edu_backend/internal/model"
	"strconv"

	"gorm.io/gorm"
)

type ExamFilter struct {
	Status    model.ExamStatus
	CreatorID uint
}

type QuestionFilter struct {
	Skill string
	Type  model.QuestionType
	Level string
}

// ExamRepository 考试、题库和评分标准的存储
type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) CreateExam(e *model.Exam) error {
	return r.DB.Create(e).Error
}

func (r *ExamRepository) FindExamByID(id uint) (*model.Exam, error) {
	var e model.Exam
	err := r.DB.First(&e, id).Error
	return &e, err
}

func (r *ExamRepository) UpdateExam(e *model.Exam) error {
	return r.DB.Save(e).Error
}

func (r *ExamRepository) DeleteExam(id uint) error {
	return r.DB.Delete(&model.Exam{}, id).Error
}

func (r *ExamRepository) ListExams(filter ExamFilter, page, limit int) ([]model.Exam, int64, error) {
	var es []model.Exam
	var total int64

	query := r.DB.Model(&model.Exam{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatorID > 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&es).Error
	return es, total, err
}

// FindQuestionsByIDs 返回 ids 中存在的题目，顺序不保证
func (r *ExamRepository) FindQuestionsByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	if len(ids) == 0 {
		return qs, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *ExamRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *ExamRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *ExamRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *ExamRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *ExamRepository) ListQuestions(filter QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64

	query := r.DB.Model(&model.Question{})
	if filter.Skill != "" {
		query = query.Where("skill = ?", filter.Skill)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("id asc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

func (r *ExamRepository) CreateRubric(rb *model.Rubric) error {
	return r.DB.Create(rb).Error
}

func (r *ExamRepository) FindRubricByID(id uint) (*model.Rubric, error) {
	var rb model.Rubric
	err := r.DB.First(&rb, id).Error
	return &rb, err
}

func (r *ExamRepository) UpdateRubric(rb *model.Rubric) error {
	return r.DB.Save(rb).Error
}

func (r *ExamRepository) DeleteRubric(id uint) error {
	return r.DB.Delete(&model.Rubric{}, id).Error
}

func (r *ExamRepository) ListRubrics(page, limit int) ([]model.Rubric, int64, error) {
	var rbs []model.Rubric
	var total int64

	query := r.DB.Model(&model.Rubric{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("id asc").Offset(offset).Limit(limit).Find(&rbs).Error
	return rbs, total, err
}

// CountQuestionsUsingRubric 删除评分标准前检查引用
func (r *ExamRepository) CountQuestionsUsingRubric(rubricID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Question{}).Where("rubric_id = ?", rubricID).Count(&n).Error
	return n, err
}

// CountExamsUsingQuestion 删除题目前检查考试引用
func (r *ExamRepository) CountExamsUsingQuestion(questionID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Exam{}).
		Where("JSON_CONTAINS(question_ids, ?)", strconv.FormatUint(uint64(questionID), 10)).
		Count(&n).Error
	return n, err
}
