package service

import (
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"english_edu_backend/internal/repository/inmem"
	"english_edu_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionService(t *testing.T) (*QuestionService, examFixture) {
	t.Helper()
	fx := seedExam(t, inmem.NewDB())
	return NewQuestionService(fx.repo), fx
}

func TestCreateQuestion_Invariants(t *testing.T) {
	svc, _ := newQuestionService(t)

	rb, err := svc.CreateRubric(teacherClaims.UserID, RubricRequest{
		Name:     "Writing band",
		Criteria: []model.RubricCriterion{{Name: "Coherence", Weight: 1}},
	})
	require.NoError(t, err)

	q, err := svc.CreateQuestion(teacherClaims.UserID, QuestionRequest{
		Skill:         "vocabulary",
		Type:          model.FillInBlank,
		Content:       "I ___ to school yesterday.",
		CorrectAnswer: json.RawMessage(`"went"`),
		RubricID:      &rb.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Points, "zero points default to one")
	assert.Nil(t, q.RubricID, "auto-graded questions carry no rubric")

	essay, err := svc.CreateQuestion(teacherClaims.UserID, QuestionRequest{
		Skill:    "writing",
		Type:     model.Essay,
		Content:  "Describe your town.",
		Points:   5,
		RubricID: &rb.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, rb.ID, *essay.RubricID)

	missing := uint(999)
	tests := []struct {
		name string
		req  QuestionRequest
	}{
		{"unknown type", QuestionRequest{Type: "dictation", Content: "x"}},
		{"auto without answer", QuestionRequest{Type: model.FillInBlank, Content: "x"}},
		{"choice without options", QuestionRequest{Type: model.MultipleChoice, Content: "x", CorrectAnswer: json.RawMessage(`"A"`)}},
		{"unparseable answer", QuestionRequest{Type: model.FillInBlank, Content: "x", CorrectAnswer: json.RawMessage(`[{"a":1}]`)}},
		{"whitespace answer", QuestionRequest{Type: model.FillInBlank, Content: "x", CorrectAnswer: json.RawMessage(`"   "`)}},
		{"list with blank item", QuestionRequest{Type: model.FillInBlank, Content: "x", CorrectAnswer: json.RawMessage(`["went", ""]`)}},
		{"list of one blank", QuestionRequest{Type: model.FillInBlank, Content: "x", CorrectAnswer: json.RawMessage(`[""]`)}},
		{"pairs with blank value", QuestionRequest{Type: model.Matching, Content: "x", Options: json.RawMessage(`["a"]`), CorrectAnswer: json.RawMessage(`{"a":" "}`)}},
		{"essay without rubric", QuestionRequest{Type: model.Essay, Content: "x"}},
		{"essay with unknown rubric", QuestionRequest{Type: model.Recording, Content: "x", RubricID: &missing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuestion(teacherClaims.UserID, tt.req)
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}
}

func TestDeleteQuestion_InUse(t *testing.T) {
	svc, fx := newQuestionService(t)

	err := svc.DeleteQuestion(teacherClaims, fx.qs[0].ID)
	assert.ErrorIs(t, err, util.ErrValidation)

	err = svc.DeleteQuestion(otherTeacher, fx.qs[0].ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	fx.exam.QuestionIDs = []uint{fx.qs[1].ID}
	require.NoError(t, fx.repo.UpdateExam(fx.exam))
	require.NoError(t, svc.DeleteQuestion(teacherClaims, fx.qs[0].ID))

	_, err = svc.GetQuestion(fx.qs[0].ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestListQuestions_Filter(t *testing.T) {
	svc, _ := newQuestionService(t)

	qs, total, err := svc.ListQuestions(repository.QuestionFilter{Skill: "grammar"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, qs, 2)

	_, total, err = svc.ListQuestions(repository.QuestionFilter{Skill: "listening"}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRubricLifecycle(t *testing.T) {
	svc, _ := newQuestionService(t)

	_, err := svc.CreateRubric(teacherClaims.UserID, RubricRequest{
		Name:     "Bad",
		Criteria: []model.RubricCriterion{{Name: "Grammar", Weight: 0}},
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	rb, err := svc.CreateRubric(teacherClaims.UserID, RubricRequest{
		Name:     "Speaking",
		Criteria: []model.RubricCriterion{{Name: "Fluency", Weight: 2}, {Name: "Pronunciation", Weight: 1}},
	})
	require.NoError(t, err)

	_, err = svc.CreateQuestion(teacherClaims.UserID, QuestionRequest{
		Type:     model.Recording,
		Content:  "Introduce yourself.",
		RubricID: &rb.ID,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRubric(rb.ID), util.ErrValidation)

	updated, err := svc.UpdateRubric(rb.ID, RubricRequest{
		Name:     "Speaking v2",
		Criteria: []model.RubricCriterion{{Name: "Fluency", Weight: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Speaking v2", updated.Name)

	rbs, total, err := svc.ListRubrics(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, rbs, 1)
}
