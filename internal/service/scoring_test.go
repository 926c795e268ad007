package service

import (
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func question(id uint, t model.QuestionType, correct string) model.Question {
	q := model.Question{Type: t, Points: 1, Content: "q"}
	q.ID = id
	if correct != "" {
		q.CorrectAnswer = raw(correct)
	}
	return q
}

func examOf(method model.GradingMethod, passScore int, qs ...model.Question) *model.Exam {
	e := &model.Exam{GradingMethod: method, PassScore: passScore, Status: model.ExamPublished}
	e.ID = 1
	for _, q := range qs {
		e.QuestionIDs = append(e.QuestionIDs, q.ID)
	}
	return e
}

func TestScoreExam_TwoMultipleChoice(t *testing.T) {
	qs := []model.Question{
		question(1, model.MultipleChoice, `"A"`),
		question(2, model.MultipleChoice, `"B"`),
	}
	exam := examOf(model.GradingAuto, 60, qs...)

	res, err := ScoreExam(exam, qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`"A"`)},
		{QuestionID: 2, Answer: raw(`"B"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, model.SubmissionGraded, res.Status)
	require.NotNil(t, res.Passed)
	assert.True(t, *res.Passed)

	res, err = ScoreExam(exam, qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`"A"`)},
		{QuestionID: 2, Answer: raw(`"C"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Score)
	require.NotNil(t, res.Passed)
	assert.False(t, *res.Passed)
	assert.Equal(t, model.AnswerCorrect, res.Answers[0].Status)
	assert.Equal(t, model.AnswerIncorrect, res.Answers[1].Status)
}

func TestScoreExam_EmptyAnswersScoreZero(t *testing.T) {
	qs := []model.Question{
		question(1, model.MultipleChoice, `"A"`),
		question(2, model.FillInBlank, `"went"`),
	}
	res, err := ScoreExam(examOf(model.GradingAuto, 0, qs...), qs, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 2, res.Possible)
	for _, a := range res.Answers {
		assert.Equal(t, model.AnswerUnanswered, a.Status)
	}
	// pass score 0 still passes with 0
	require.NotNil(t, res.Passed)
	assert.True(t, *res.Passed)
}

func TestScoreExam_NoQuestions(t *testing.T) {
	res, err := ScoreExam(examOf(model.GradingAuto, 50), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Answers)
}

func TestScoreExam_EssayIsPending(t *testing.T) {
	qs := []model.Question{
		question(1, model.MultipleChoice, `"A"`),
		question(2, model.Essay, ""),
	}
	res, err := ScoreExam(examOf(model.GradingAuto, 50, qs...), qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`"A"`)},
		{QuestionID: 2, Answer: raw(`"My summer holiday..."`)},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionPendingReview, res.Status)
	assert.Nil(t, res.Passed)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, model.AnswerPendingManualReview, res.Answers[1].Status)
	assert.Equal(t, 0, res.Answers[1].AwardedPoints)
}

func TestScoreExam_ManualGradingMethodIsPending(t *testing.T) {
	qs := []model.Question{question(1, model.MultipleChoice, `"A"`)}
	for _, method := range []model.GradingMethod{model.GradingManual, model.GradingHybrid} {
		res, err := ScoreExam(examOf(method, 0, qs...), qs, []model.SubmittedAnswer{
			{QuestionID: 1, Answer: raw(`"A"`)},
		})
		require.NoError(t, err)
		assert.Equal(t, model.SubmissionPendingReview, res.Status, method)
		assert.Nil(t, res.Passed, method)
		assert.Equal(t, 100, res.Score, method)
	}
}

func TestScoreExam_Deterministic(t *testing.T) {
	qs := []model.Question{
		question(1, model.MultipleChoice, `["a","c"]`),
		question(2, model.FillInBlank, `["has","been"]`),
		question(3, model.Matching, `{"cat":"meow","dog":"woof"}`),
		question(4, model.Recording, ""),
	}
	exam := examOf(model.GradingHybrid, 70, qs...)
	answers := []model.SubmittedAnswer{
		{QuestionID: 3, Answer: raw(`{"dog":"woof","cat":"meow"}`)},
		{QuestionID: 1, Answer: raw(`["C","A"]`)},
		{QuestionID: 2, Answer: raw(`["been","has"]`)},
	}

	first, err := ScoreExam(exam, qs, answers)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ScoreExam(exam, qs, answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 2, first.Awarded)
	assert.Equal(t, 4, first.Possible)
	assert.Equal(t, 50, first.Score)
}

func TestScoreExam_Weights(t *testing.T) {
	q1 := question(1, model.MultipleChoice, `"A"`)
	q1.Points = 3
	q2 := question(2, model.MultipleChoice, `"B"`)
	qs := []model.Question{q1, q2}

	res, err := ScoreExam(examOf(model.GradingAuto, 0, qs...), qs, []model.SubmittedAnswer{
		{QuestionID: 2, Answer: raw(`"B"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Awarded)
	assert.Equal(t, 4, res.Possible)
	assert.Equal(t, 25, res.Score)
}

func TestScoreExam_RoundsHalfUp(t *testing.T) {
	qs := []model.Question{
		question(1, model.FillInBlank, `"a"`),
		question(2, model.FillInBlank, `"b"`),
		question(3, model.FillInBlank, `"c"`),
	}
	res, err := ScoreExam(examOf(model.GradingAuto, 0, qs...), qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`"a"`)},
		{QuestionID: 2, Answer: raw(`"b"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 67, res.Score)

	qs = qs[:1]
	qs = append(qs, question(4, model.FillInBlank, `"x"`),
		question(5, model.FillInBlank, `"y"`), question(6, model.FillInBlank, `"z"`),
		question(7, model.FillInBlank, `"w"`), question(8, model.FillInBlank, `"v"`),
		question(9, model.FillInBlank, `"u"`), question(10, model.FillInBlank, `"t"`))
	res, err = ScoreExam(examOf(model.GradingAuto, 0, qs...), qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`"a"`)},
	})
	require.NoError(t, err)
	// 1/8 = 12.5
	assert.Equal(t, 13, res.Score)
}

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		name      string
		qType     model.QuestionType
		submitted string
		correct   string
		want      bool
	}{
		{"case and spaces", model.FillInBlank, `"  Has   Been "`, `"has been"`, true},
		{"scalar vs one element list", model.MultipleChoice, `"b"`, `["B"]`, true},
		{"list vs scalar", model.FillInBlank, `["went"]`, `"went"`, true},
		{"multiple choice ignores order", model.MultipleChoice, `["c","a"]`, `["A","C"]`, true},
		{"multiple choice missing option", model.MultipleChoice, `["a"]`, `["a","c"]`, false},
		{"fill in blank keeps order", model.FillInBlank, `["been","has"]`, `["has","been"]`, false},
		{"matching pairs", model.Matching, `{"Cat":" MEOW "}`, `{"cat":"meow"}`, true},
		{"matching wrong pair", model.Matching, `{"cat":"woof"}`, `{"cat":"meow"}`, false},
		{"matching extra pair", model.Matching, `{"cat":"meow","dog":"woof"}`, `{"cat":"meow"}`, false},
		{"matching ordered list", model.Matching, `["1-b","2-a"]`, `["1-b","2-a"]`, true},
		{"pairs vs list", model.Matching, `["meow"]`, `{"cat":"meow"}`, false},
		{"numbers", model.FillInBlank, `42`, `"42"`, true},
		{"booleans", model.MultipleChoice, `true`, `"TRUE"`, true},
		{"nested list is invalid", model.MultipleChoice, `[["a"]]`, `["a"]`, false},
		{"malformed", model.FillInBlank, `{`, `"a"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, answersMatch(tt.qType, raw(tt.submitted), raw(tt.correct)))
		})
	}
}

func TestScoreExam_RejectsBadPayload(t *testing.T) {
	qs := []model.Question{question(1, model.MultipleChoice, `"A"`)}
	exam := examOf(model.GradingAuto, 50, qs...)

	_, err := ScoreExam(exam, qs, []model.SubmittedAnswer{{QuestionID: 99, Answer: raw(`"A"`)}})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = ScoreExam(exam, qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`"A"`)},
		{QuestionID: 1, Answer: raw(`"B"`)},
	})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestScoreExam_NullAnswerIsUnanswered(t *testing.T) {
	qs := []model.Question{question(1, model.MultipleChoice, `"A"`)}
	res, err := ScoreExam(examOf(model.GradingAuto, 50, qs...), qs, []model.SubmittedAnswer{
		{QuestionID: 1, Answer: raw(`null`)},
	})
	require.NoError(t, err)
	assert.Equal(t, model.AnswerUnanswered, res.Answers[0].Status)
}

func TestScoreExam_BlankKeyNeverMatches(t *testing.T) {
	qs := []model.Question{question(1, model.FillInBlank, `"   "`)}
	exam := examOf(model.GradingAuto, 60, qs...)

	res, err := ScoreExam(exam, qs, []model.SubmittedAnswer{{QuestionID: 1, Answer: raw(`""`)}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	require.NotNil(t, res.Passed)
	assert.False(t, *res.Passed)
}
