package model

import "encoding/json"

type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
	ExamArchived  ExamStatus = "archived"
)

type GradingMethod string

const (
	GradingAuto   GradingMethod = "auto"
	GradingManual GradingMethod = "manual"
	GradingHybrid GradingMethod = "hybrid"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// swagger:model Exam
type Exam struct {
	BaseModel
	CreatorID      uint           `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Duration       int            `gorm:"default:0" json:"duration"` // Minutes
	PassScore      int            `gorm:"default:0" json:"passScore"`
	GradingMethod  GradingMethod  `gorm:"size:20;default:'auto'" json:"gradingMethod"`
	QuestionIDs    []uint         `gorm:"serializer:json;type:json" json:"questionIds"`
	Status         ExamStatus     `gorm:"size:20;default:'draft';index" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"size:20;default:'pending'" json:"approvalStatus"`
}

func (Exam) TableName() string {
	return "exams"
}

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FillInBlank    QuestionType = "fill_in_blank"
	Essay          QuestionType = "essay"
	Recording      QuestionType = "recording"
	Matching       QuestionType = "matching"
)

// AutoGradable reports whether answers of this type can be compared
// against a stored correct answer.
func (t QuestionType) AutoGradable() bool {
	switch t {
	case MultipleChoice, FillInBlank, Matching:
		return true
	}
	return false
}

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, FillInBlank, Essay, Recording, Matching:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel
	CreatorID     uint            `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Skill         string          `gorm:"size:20;index" json:"skill"` // listening, reading, writing, speaking, grammar, vocabulary
	Type          QuestionType    `gorm:"size:30;not null" json:"type"`
	Level         string          `gorm:"size:20" json:"level"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer json.RawMessage `gorm:"type:json" json:"correctAnswer,omitempty"`
	Points        int             `gorm:"default:1" json:"points"`
	RubricID      *uint           `gorm:"index;type:bigint unsigned" json:"rubricId,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// PointValue is the weight of the question in the aggregate score.
func (q *Question) PointValue() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

type RubricCriterion struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Descriptor string  `json:"descriptor"`
}

// swagger:model Rubric
type Rubric struct {
	BaseModel
	CreatorID   uint              `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Criteria    []RubricCriterion `gorm:"serializer:json;type:json" json:"criteria"`
}

func (Rubric) TableName() string {
	return "rubrics"
}
