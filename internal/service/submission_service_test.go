package service

import (
	"context"
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository/inmem"
	"english_edu_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionService(t *testing.T) (*SubmissionService, examFixture) {
	t.Helper()
	db := inmem.NewDB()
	fx := seedExam(t, db)
	svc := NewSubmissionService(fx.repo, inmem.NewSubmissionRepository(db))
	svc.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, fx
}

func answersFor(fx examFixture, values ...string) SubmitExamRequest {
	var req SubmitExamRequest
	for i, v := range values {
		req.Answers = append(req.Answers, model.SubmittedAnswer{
			QuestionID: fx.qs[i].ID,
			Answer:     json.RawMessage(v),
		})
	}
	return req
}

func TestSubmit_GradesAndPersists(t *testing.T) {
	svc, fx := newSubmissionService(t)

	sub, err := svc.Submit(context.Background(), learnerClaims.UserID, fx.exam.ID, answersFor(fx, `"A"`, `"C"`))
	require.NoError(t, err)

	assert.NotZero(t, sub.ID)
	assert.Equal(t, 50, sub.Score)
	assert.Equal(t, 1, sub.Attempt)
	assert.Equal(t, model.SubmissionGraded, sub.Status)
	require.NotNil(t, sub.Passed)
	assert.False(t, *sub.Passed)
	assert.Len(t, sub.Answers, 2)

	stored, err := svc.Get(learnerClaims, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.Score, stored.Score)
}

func TestSubmit_AttemptsIncrease(t *testing.T) {
	svc, fx := newSubmissionService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, learnerClaims.UserID, fx.exam.ID, answersFor(fx, `"A"`))
	require.NoError(t, err)
	second, err := svc.Submit(ctx, learnerClaims.UserID, fx.exam.ID, answersFor(fx, `"A"`, `"B"`))
	require.NoError(t, err)
	other, err := svc.Submit(ctx, otherLearner.UserID, fx.exam.ID, answersFor(fx))
	require.NoError(t, err)

	assert.Equal(t, 1, first.Attempt)
	assert.Equal(t, 2, second.Attempt)
	assert.Equal(t, 100, second.Score)
	assert.Equal(t, 1, other.Attempt)
}

func TestSubmit_ExamMustBePublished(t *testing.T) {
	svc, fx := newSubmissionService(t)

	_, err := svc.Submit(context.Background(), learnerClaims.UserID, 404, SubmitExamRequest{})
	assert.ErrorIs(t, err, util.ErrNotFound)

	fx.exam.Status = model.ExamDraft
	require.NoError(t, fx.repo.UpdateExam(fx.exam))
	_, err = svc.Submit(context.Background(), learnerClaims.UserID, fx.exam.ID, SubmitExamRequest{})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSubmit_MissingQuestionIsNotFound(t *testing.T) {
	svc, fx := newSubmissionService(t)
	require.NoError(t, fx.repo.DeleteQuestion(fx.qs[1].ID))

	_, err := svc.Submit(context.Background(), learnerClaims.UserID, fx.exam.ID, answersFor(fx, `"A"`))
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSubmit_ForeignQuestionIsValidationError(t *testing.T) {
	svc, fx := newSubmissionService(t)

	_, err := svc.Submit(context.Background(), learnerClaims.UserID, fx.exam.ID, SubmitExamRequest{
		Answers: []model.SubmittedAnswer{{QuestionID: 999, Answer: json.RawMessage(`"A"`)}},
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	subs, total, err := svc.ListMine(learnerClaims.UserID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, subs)
}

func TestSubmission_Visibility(t *testing.T) {
	svc, fx := newSubmissionService(t)
	sub, err := svc.Submit(context.Background(), learnerClaims.UserID, fx.exam.ID, answersFor(fx, `"A"`, `"B"`))
	require.NoError(t, err)

	_, err = svc.Get(otherLearner, sub.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = svc.Get(teacherClaims, sub.ID)
	assert.NoError(t, err)

	_, err = svc.Get(learnerClaims, 12345)
	assert.ErrorIs(t, err, util.ErrNotFound)

	list, total, err := svc.ListForExam(teacherClaims, fx.exam.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	_, _, err = svc.ListForExam(otherTeacher, fx.exam.ID, 1, 10)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, _, err = svc.ListForExam(adminClaims, fx.exam.ID, 1, 10)
	assert.NoError(t, err)
}
