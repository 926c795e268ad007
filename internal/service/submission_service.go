package service

import (
	"context"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/logger"
	"english_edu_backend/pkg/monitoring"
	"english_edu_backend/pkg/tracing"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExamReader 评分需要读取的考试数据
type ExamReader interface {
	FindExamByID(id uint) (*model.Exam, error)
	FindQuestionsByIDs(ids []uint) ([]model.Question, error)
}

type SubmissionStore interface {
	Create(s *model.Submission) error
	FindByID(id uint) (*model.Submission, error)
	CountAttempts(examID, learnerID uint) (int64, error)
	ListByLearner(learnerID uint, page, limit int) ([]model.Submission, int64, error)
	ListByExam(examID uint, page, limit int) ([]model.Submission, int64, error)
}

type SubmissionService struct {
	Exams ExamReader
	Repo  SubmissionStore
	Now   func() time.Time
}

func NewSubmissionService(exams ExamReader, repo SubmissionStore) *SubmissionService {
	return &SubmissionService{Exams: exams, Repo: repo, Now: time.Now}
}

type SubmitExamRequest struct {
	Answers []model.SubmittedAnswer `json:"answers" binding:"dive"`
}

// Submit 评分并保存为新的一次作答
func (s *SubmissionService) Submit(ctx context.Context, learnerID, examID uint, req SubmitExamRequest) (sub *model.Submission, err error) {
	_, span := tracing.StartSpan(ctx, "submission.Submit",
		attribute.Int("exam.id", int(examID)),
		attribute.Int("learner.id", int(learnerID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	exam, err := s.Exams.FindExamByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && exam.Status != model.ExamPublished) {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	questions, err := loadExamQuestions(s.Exams, exam)
	if err != nil {
		return nil, err
	}

	result, err := ScoreExam(exam, questions, req.Answers)
	if err != nil {
		return nil, err
	}

	attempts, err := s.Repo.CountAttempts(exam.ID, learnerID)
	if err != nil {
		return nil, storeErr(err)
	}

	sub = &model.Submission{
		ExamID:      exam.ID,
		LearnerID:   learnerID,
		Attempt:     int(attempts) + 1,
		Answers:     result.Answers,
		Score:       result.Score,
		Passed:      result.Passed,
		Status:      result.Status,
		SubmittedAt: s.Now(),
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, storeErr(err)
	}

	monitoring.SubmissionCounter.WithLabelValues(string(sub.Status)).Inc()
	monitoring.SubmissionScore.Observe(float64(sub.Score))
	logger.Log.Info("exam submitted",
		zap.Uint("examID", exam.ID),
		zap.Uint("learnerID", learnerID),
		zap.Int("attempt", sub.Attempt),
		zap.Int("score", sub.Score),
		zap.String("status", string(sub.Status)),
	)

	return sub, nil
}

// Get 仅本人或教职人员可查看
func (s *SubmissionService) Get(viewer *util.Claims, id uint) (*model.Submission, error) {
	sub, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "submission", id)
	}
	if sub.LearnerID != viewer.UserID && !viewer.IsStaff() {
		return nil, util.Forbiddenf("submission %d belongs to another learner", id)
	}
	return sub, nil
}

func (s *SubmissionService) ListMine(learnerID uint, page, limit int) ([]model.Submission, int64, error) {
	subs, total, err := s.Repo.ListByLearner(learnerID, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return subs, total, nil
}

// ListForExam 教师查看某场考试的全部作答
func (s *SubmissionService) ListForExam(viewer *util.Claims, examID uint, page, limit int) ([]model.Submission, int64, error) {
	exam, err := s.Exams.FindExamByID(examID)
	if err != nil {
		return nil, 0, lookupErr(err, "exam", examID)
	}
	if viewer.Role != model.Admin && exam.CreatorID != viewer.UserID {
		return nil, 0, util.Forbiddenf("exam %d belongs to another teacher", examID)
	}

	subs, total, err := s.Repo.ListByExam(examID, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return subs, total, nil
}

// loadExamQuestions 按考试顺序返回题目
func loadExamQuestions(repo ExamReader, exam *model.Exam) ([]model.Question, error) {
	found, err := repo.FindQuestionsByIDs(exam.QuestionIDs)
	if err != nil {
		return nil, storeErr(err)
	}

	byID := make(map[uint]model.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(exam.QuestionIDs))
	for _, id := range exam.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			return nil, util.NotFoundf("question %d referenced by exam %d not found", id, exam.ID)
		}
		ordered = append(ordered, q)
	}
	return ordered, nil
}
