package service

import (
	"context"
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

type ExamRepo interface {
	ExamReader
	CreateExam(e *model.Exam) error
	UpdateExam(e *model.Exam) error
	DeleteExam(id uint) error
	ListExams(filter repository.ExamFilter, page, limit int) ([]model.Exam, int64, error)
}

type ExamService struct {
	Repo  ExamRepo
	Cache ExamCache
}

func NewExamService(repo ExamRepo, cache ExamCache) *ExamService {
	if cache == nil {
		cache = noopExamCache{}
	}
	return &ExamService{Repo: repo, Cache: cache}
}

type ExamRequest struct {
	Title         string              `json:"title" binding:"required"`
	Description   string              `json:"description"`
	Duration      int                 `json:"duration" binding:"min=0"`
	PassScore     int                 `json:"passScore" binding:"min=0,max=100"`
	GradingMethod model.GradingMethod `json:"gradingMethod" binding:"required,oneof=auto manual hybrid"`
	QuestionIDs   []uint              `json:"questionIds"`
	Status        model.ExamStatus    `json:"status" binding:"omitempty,oneof=draft published archived"`
}

type ApprovalRequest struct {
	ApprovalStatus model.ApprovalStatus `json:"approvalStatus" binding:"required,oneof=pending approved rejected"`
}

// PublicQuestion 隐藏正确答案和评分标准
type PublicQuestion struct {
	ID      uint               `json:"id"`
	Skill   string             `json:"skill"`
	Type    model.QuestionType `json:"type"`
	Level   string             `json:"level"`
	Content string             `json:"content"`
	Options json.RawMessage    `json:"options,omitempty"`
	Points  int                `json:"points"`
}

type PublicExamDetail struct {
	PublicExam
	Questions []PublicQuestion `json:"questions"`
}

type StaffExamDetail struct {
	Exam      *model.Exam      `json:"exam"`
	Questions []model.Question `json:"questions"`
}

func (s *ExamService) validate(req *ExamRequest) error {
	if req.Title == "" {
		return util.Validationf("title is required")
	}
	if req.PassScore < 0 || req.PassScore > 100 {
		return util.Validationf("passScore must be between 0 and 100")
	}
	if req.Duration < 0 {
		return util.Validationf("duration must not be negative")
	}
	switch req.GradingMethod {
	case model.GradingAuto, model.GradingManual, model.GradingHybrid:
	default:
		return util.Validationf("unknown grading method %q", req.GradingMethod)
	}
	switch req.Status {
	case "":
		req.Status = model.ExamDraft
	case model.ExamDraft, model.ExamPublished, model.ExamArchived:
	default:
		return util.Validationf("unknown exam status %q", req.Status)
	}
	if req.Status == model.ExamPublished && len(req.QuestionIDs) == 0 {
		return util.Validationf("a published exam needs at least one question")
	}

	seen := make(map[uint]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if seen[id] {
			return util.Validationf("question %d listed twice", id)
		}
		seen[id] = true
	}

	found, err := s.Repo.FindQuestionsByIDs(req.QuestionIDs)
	if err != nil {
		return storeErr(err)
	}
	if len(found) != len(req.QuestionIDs) {
		exists := make(map[uint]bool, len(found))
		for _, q := range found {
			exists[q.ID] = true
		}
		for _, id := range req.QuestionIDs {
			if !exists[id] {
				return util.Validationf("question %d does not exist", id)
			}
		}
	}
	return nil
}

func (s *ExamService) CreateExam(ctx context.Context, creatorID uint, req ExamRequest) (*model.Exam, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	e := &model.Exam{
		CreatorID:      creatorID,
		Title:          req.Title,
		Description:    req.Description,
		Duration:       req.Duration,
		PassScore:      req.PassScore,
		GradingMethod:  req.GradingMethod,
		QuestionIDs:    append([]uint{}, req.QuestionIDs...),
		Status:         req.Status,
		ApprovalStatus: model.ApprovalPending,
	}
	if err := s.Repo.CreateExam(e); err != nil {
		return nil, storeErr(err)
	}

	s.Cache.Invalidate(ctx)
	logger.Log.Info("exam created", zap.Uint("examID", e.ID), zap.Uint("creatorID", creatorID))
	return e, nil
}

// ownedExam 加载当前用户可修改的考试
func (s *ExamService) ownedExam(viewer *util.Claims, id uint) (*model.Exam, error) {
	e, err := s.Repo.FindExamByID(id)
	if err != nil {
		return nil, lookupErr(err, "exam", id)
	}
	if viewer.Role != model.Admin && e.CreatorID != viewer.UserID {
		return nil, util.Forbiddenf("exam %d belongs to another teacher", id)
	}
	return e, nil
}

func (s *ExamService) UpdateExam(ctx context.Context, viewer *util.Claims, id uint, req ExamRequest) (*model.Exam, error) {
	e, err := s.ownedExam(viewer, id)
	if err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = e.Status
	}
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	e.Title = req.Title
	e.Description = req.Description
	e.Duration = req.Duration
	e.PassScore = req.PassScore
	e.GradingMethod = req.GradingMethod
	e.QuestionIDs = append([]uint{}, req.QuestionIDs...)
	e.Status = req.Status
	if err := s.Repo.UpdateExam(e); err != nil {
		return nil, storeErr(err)
	}

	s.Cache.Invalidate(ctx)
	return e, nil
}

func (s *ExamService) DeleteExam(ctx context.Context, viewer *util.Claims, id uint) error {
	if _, err := s.ownedExam(viewer, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteExam(id); err != nil {
		return storeErr(err)
	}
	s.Cache.Invalidate(ctx)
	return nil
}

func (s *ExamService) SetApproval(ctx context.Context, id uint, status model.ApprovalStatus) (*model.Exam, error) {
	e, err := s.Repo.FindExamByID(id)
	if err != nil {
		return nil, lookupErr(err, "exam", id)
	}
	e.ApprovalStatus = status
	if err := s.Repo.UpdateExam(e); err != nil {
		return nil, storeErr(err)
	}
	s.Cache.Invalidate(ctx)
	return e, nil
}

func (s *ExamService) ListPublished(ctx context.Context, page, limit int) (*PublishedExamPage, error) {
	if p, ok := s.Cache.GetPublished(ctx, page, limit); ok {
		return p, nil
	}

	es, total, err := s.Repo.ListExams(repository.ExamFilter{Status: model.ExamPublished}, page, limit)
	if err != nil {
		return nil, storeErr(err)
	}

	p := &PublishedExamPage{List: make([]PublicExam, 0, len(es)), Total: total}
	for i := range es {
		p.List = append(p.List, toPublicExam(&es[i]))
	}
	s.Cache.SetPublished(ctx, page, limit, p)
	return p, nil
}

// ListManaged 教师查看自己的考试，管理员查看全部
func (s *ExamService) ListManaged(viewer *util.Claims, status model.ExamStatus, page, limit int) ([]model.Exam, int64, error) {
	filter := repository.ExamFilter{Status: status}
	if viewer.Role != model.Admin {
		filter.CreatorID = viewer.UserID
	}
	es, total, err := s.Repo.ListExams(filter, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return es, total, nil
}

func (s *ExamService) GetPublicExam(id uint) (*PublicExamDetail, error) {
	e, err := s.Repo.FindExamByID(id)
	if err != nil {
		return nil, lookupErr(err, "exam", id)
	}
	if e.Status != model.ExamPublished {
		return nil, util.ErrExamNotFound
	}

	qs, err := loadExamQuestions(s.Repo, e)
	if err != nil {
		return nil, err
	}

	detail := &PublicExamDetail{PublicExam: toPublicExam(e), Questions: make([]PublicQuestion, 0, len(qs))}
	for _, q := range qs {
		detail.Questions = append(detail.Questions, PublicQuestion{
			ID:      q.ID,
			Skill:   q.Skill,
			Type:    q.Type,
			Level:   q.Level,
			Content: q.Content,
			Options: q.Options,
			Points:  q.PointValue(),
		})
	}
	return detail, nil
}

// GetStaffExam 返回含答案的完整考试，仅限创建者或管理员
func (s *ExamService) GetStaffExam(viewer *util.Claims, id uint) (*StaffExamDetail, error) {
	e, err := s.ownedExam(viewer, id)
	if err != nil {
		return nil, err
	}
	qs, err := loadExamQuestions(s.Repo, e)
	if err != nil {
		return nil, err
	}
	return &StaffExamDetail{Exam: e, Questions: qs}, nil
}
