package service

import (
	"bytes"
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"english_edu_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type QuestionRepo interface {
	CreateQuestion(q *model.Question) error
	FindQuestionByID(id uint) (*model.Question, error)
	UpdateQuestion(q *model.Question) error
	DeleteQuestion(id uint) error
	ListQuestions(filter repository.QuestionFilter, page, limit int) ([]model.Question, int64, error)
	CountExamsUsingQuestion(questionID uint) (int64, error)

	CreateRubric(rb *model.Rubric) error
	FindRubricByID(id uint) (*model.Rubric, error)
	UpdateRubric(rb *model.Rubric) error
	DeleteRubric(id uint) error
	ListRubrics(page, limit int) ([]model.Rubric, int64, error)
	CountQuestionsUsingRubric(rubricID uint) (int64, error)
}

// QuestionService 管理题库以及主观题的评分标准
type QuestionService struct {
	Repo QuestionRepo
}

func NewQuestionService(repo QuestionRepo) *QuestionService {
	return &QuestionService{Repo: repo}
}

type QuestionRequest struct {
	Skill         string             `json:"skill" binding:"omitempty,oneof=listening reading writing speaking grammar vocabulary"`
	Type          model.QuestionType `json:"type" binding:"required"`
	Level         string             `json:"level"`
	Content       string             `json:"content" binding:"required"`
	Options       json.RawMessage    `json:"options"`
	CorrectAnswer json.RawMessage    `json:"correctAnswer"`
	Points        int                `json:"points" binding:"min=0"`
	RubricID      *uint              `json:"rubricId"`
}

func isEmptyJSON(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`)) ||
		bytes.Equal(t, []byte("[]")) || bytes.Equal(t, []byte("{}"))
}

func (s *QuestionService) validate(req *QuestionRequest) error {
	if !req.Type.Valid() {
		return util.Validationf("unknown question type %q", req.Type)
	}
	if req.Content == "" {
		return util.Validationf("content is required")
	}
	if req.Points < 0 {
		return util.Validationf("points must not be negative")
	}

	if req.Type.AutoGradable() {
		if isEmptyJSON(req.CorrectAnswer) {
			return util.Validationf("%s questions need a correct answer", req.Type)
		}
		want := parseAnswerValue(req.CorrectAnswer)
		if want.kind == kindInvalid {
			return util.Validationf("correct answer must be a string, a list of strings or an object of strings")
		}
		if want.blank() {
			return util.Validationf("%s questions need a non-blank correct answer", req.Type)
		}
	} else {
		if req.RubricID == nil {
			return util.Validationf("%s questions need a rubric", req.Type)
		}
		_, err := s.Repo.FindRubricByID(*req.RubricID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.Validationf("rubric %d does not exist", *req.RubricID)
		}
		if err != nil {
			return storeErr(err)
		}
	}

	if (req.Type == model.MultipleChoice || req.Type == model.Matching) && isEmptyJSON(req.Options) {
		return util.Validationf("%s questions need options", req.Type)
	}
	return nil
}

func (s *QuestionService) CreateQuestion(creatorID uint, req QuestionRequest) (*model.Question, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	q := &model.Question{CreatorID: creatorID}
	applyQuestion(q, req)
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, storeErr(err)
	}
	return q, nil
}

func applyQuestion(q *model.Question, req QuestionRequest) {
	q.Skill = req.Skill
	q.Type = req.Type
	q.Level = req.Level
	q.Content = req.Content
	q.Options = req.Options
	q.CorrectAnswer = req.CorrectAnswer
	q.Points = req.Points
	if q.Points == 0 {
		q.Points = 1
	}
	q.RubricID = req.RubricID
	if req.Type.AutoGradable() {
		q.RubricID = nil
	}
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, lookupErr(err, "question", id)
	}
	return q, nil
}

func (s *QuestionService) UpdateQuestion(viewer *util.Claims, id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if viewer.Role != model.Admin && q.CreatorID != viewer.UserID {
		return nil, util.Forbiddenf("question %d belongs to another teacher", id)
	}
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	applyQuestion(q, req)
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, storeErr(err)
	}
	return q, nil
}

func (s *QuestionService) DeleteQuestion(viewer *util.Claims, id uint) error {
	q, err := s.GetQuestion(id)
	if err != nil {
		return err
	}
	if viewer.Role != model.Admin && q.CreatorID != viewer.UserID {
		return util.Forbiddenf("question %d belongs to another teacher", id)
	}

	n, err := s.Repo.CountExamsUsingQuestion(id)
	if err != nil {
		return storeErr(err)
	}
	if n > 0 {
		return util.Validationf("question %d is used by %d exam(s)", id, n)
	}
	if err := s.Repo.DeleteQuestion(id); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *QuestionService) ListQuestions(filter repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	qs, total, err := s.Repo.ListQuestions(filter, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return qs, total, nil
}

type RubricRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Criteria    []model.RubricCriterion `json:"criteria" binding:"required,min=1"`
}

func validateRubric(req RubricRequest) error {
	if req.Name == "" {
		return util.Validationf("name is required")
	}
	if len(req.Criteria) == 0 {
		return util.Validationf("a rubric needs at least one criterion")
	}
	for i, c := range req.Criteria {
		if c.Name == "" {
			return util.Validationf("criterion %d has no name", i+1)
		}
		if c.Weight <= 0 {
			return util.Validationf("criterion %q must have a positive weight", c.Name)
		}
	}
	return nil
}

func (s *QuestionService) CreateRubric(creatorID uint, req RubricRequest) (*model.Rubric, error) {
	if err := validateRubric(req); err != nil {
		return nil, err
	}
	rb := &model.Rubric{
		CreatorID:   creatorID,
		Name:        req.Name,
		Description: req.Description,
		Criteria:    req.Criteria,
	}
	if err := s.Repo.CreateRubric(rb); err != nil {
		return nil, storeErr(err)
	}
	return rb, nil
}

func (s *QuestionService) GetRubric(id uint) (*model.Rubric, error) {
	rb, err := s.Repo.FindRubricByID(id)
	if err != nil {
		return nil, lookupErr(err, "rubric", id)
	}
	return rb, nil
}

func (s *QuestionService) UpdateRubric(id uint, req RubricRequest) (*model.Rubric, error) {
	if err := validateRubric(req); err != nil {
		return nil, err
	}
	rb, err := s.GetRubric(id)
	if err != nil {
		return nil, err
	}
	rb.Name = req.Name
	rb.Description = req.Description
	rb.Criteria = req.Criteria
	if err := s.Repo.UpdateRubric(rb); err != nil {
		return nil, storeErr(err)
	}
	return rb, nil
}

func (s *QuestionService) DeleteRubric(id uint) error {
	if _, err := s.GetRubric(id); err != nil {
		return err
	}
	n, err := s.Repo.CountQuestionsUsingRubric(id)
	if err != nil {
		return storeErr(err)
	}
	if n > 0 {
		return util.Validationf("rubric %d is used by %d question(s)", id, n)
	}
	if err := s.Repo.DeleteRubric(id); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *QuestionService) ListRubrics(page, limit int) ([]model.Rubric, int64, error) {
	rbs, total, err := s.Repo.ListRubrics(page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return rbs, total, nil
}
