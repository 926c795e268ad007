package model

import (
	"encoding/json"
	"time"
)

type SubmissionStatus string

const (
	SubmissionGraded        SubmissionStatus = "graded"
	SubmissionPendingReview SubmissionStatus = "pending_review"
)

type AnswerStatus string

const (
	AnswerCorrect             AnswerStatus = "correct"
	AnswerIncorrect           AnswerStatus = "incorrect"
	AnswerUnanswered          AnswerStatus = "unanswered"
	AnswerPendingManualReview AnswerStatus = "pending_manual_review"
)

// AnswerResult is the outcome for one question of a submission.
type AnswerResult struct {
	QuestionID     uint            `json:"questionId"`
	QuestionType   QuestionType    `json:"questionType"`
	Answer         json.RawMessage `json:"answer,omitempty"`
	Status         AnswerStatus    `json:"status"`
	AwardedPoints  int             `json:"awardedPoints"`
	PossiblePoints int             `json:"possiblePoints"`
}

// swagger:model Submission
type Submission struct {
	BaseModel
	ExamID      uint             `gorm:"index;type:bigint unsigned" json:"examId"`
	LearnerID   uint             `gorm:"index;type:bigint unsigned" json:"learnerId"`
	Attempt     int              `gorm:"default:1" json:"attempt"`
	Answers     []AnswerResult   `gorm:"serializer:json;type:json" json:"answers"`
	Score       int              `gorm:"default:0" json:"score"`
	Passed      *bool            `json:"passed"` // nil until every manual item is reviewed
	Status      SubmissionStatus `gorm:"size:20;default:'graded'" json:"status"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmittedAnswer is one entry of a learner's answer set.
type SubmittedAnswer struct {
	QuestionID uint            `json:"questionId" binding:"required"`
	Answer     json.RawMessage `json:"answer"`
}
