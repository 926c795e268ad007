package model

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// swagger:model Order
type Order struct {
	BaseModel
	LearnerID uint        `gorm:"index;type:bigint unsigned" json:"learnerId"`
	CourseID  uint        `gorm:"index;type:bigint unsigned" json:"courseId"`
	Amount    int64       `gorm:"default:0" json:"amount"`
	Status    OrderStatus `gorm:"size:20;default:'pending'" json:"status"`
	PaidAt    *time.Time  `json:"paidAt,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	LearnerID  uint      `gorm:"uniqueIndex:idx_enrollment_learner_course;type:bigint unsigned" json:"learnerId"`
	CourseID   uint      `gorm:"uniqueIndex:idx_enrollment_learner_course;type:bigint unsigned" json:"courseId"`
	OrderID    uint      `gorm:"index;type:bigint unsigned" json:"orderId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Course     *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
