package service

import (
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository/inmem"
	"english_edu_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	adminClaims   = &util.Claims{UserID: 1, Role: model.Admin}
	teacherClaims = &util.Claims{UserID: 2, Role: model.Teacher}
	otherTeacher  = &util.Claims{UserID: 3, Role: model.Teacher}
	learnerClaims = &util.Claims{UserID: 10, Role: model.Learner}
	otherLearner  = &util.Claims{UserID: 11, Role: model.Learner}
)

type examFixture struct {
	repo *inmem.ExamRepository
	exam *model.Exam
	qs   []model.Question
}

// seedExam stores two multiple-choice questions ("A", "B") and a published
// auto-graded exam owned by teacherClaims.
func seedExam(t *testing.T, db *inmem.DB) examFixture {
	t.Helper()
	repo := inmem.NewExamRepository(db)

	var qs []model.Question
	for _, correct := range []string{`"A"`, `"B"`} {
		q := &model.Question{
			CreatorID:     teacherClaims.UserID,
			Skill:         "grammar",
			Type:          model.MultipleChoice,
			Content:       "Pick one",
			Options:       json.RawMessage(`["A","B","C"]`),
			CorrectAnswer: json.RawMessage(correct),
			Points:        1,
		}
		require.NoError(t, repo.CreateQuestion(q))
		qs = append(qs, *q)
	}

	exam := &model.Exam{
		CreatorID:      teacherClaims.UserID,
		Title:          "Grammar check",
		PassScore:      60,
		GradingMethod:  model.GradingAuto,
		QuestionIDs:    []uint{qs[0].ID, qs[1].ID},
		Status:         model.ExamPublished,
		ApprovalStatus: model.ApprovalApproved,
	}
	require.NoError(t, repo.CreateExam(exam))
	return examFixture{repo: repo, exam: exam, qs: qs}
}
