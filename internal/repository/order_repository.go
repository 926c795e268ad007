package repository

import (
	"english_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) Create(o *model.Order) error {
	return r.DB.Create(o).Error
}

func (r *OrderRepository) FindByID(id uint) (*model.Order, error) {
	var o model.Order
	err := r.DB.First(&o, id).Error
	return &o, err
}

func (r *OrderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	return r.DB.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *OrderRepository) ListByLearner(learnerID uint) ([]model.Order, error) {
	var os []model.Order
	err := r.DB.Where("learner_id = ?", learnerID).Order("created_at desc").Find(&os).Error
	return os, err
}

// MarkPaidAndEnroll 在同一事务中将待支付订单置为已支付并创建选课记录
func (r *OrderRepository) MarkPaidAndEnroll(order *model.Order, at time.Time) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{
		LearnerID:  order.LearnerID,
		CourseID:   order.CourseID,
		OrderID:    order.ID,
		EnrolledAt: at,
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, model.OrderPending).
			Updates(map[string]interface{}{"status": model.OrderPaid, "paid_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderPaid
	order.PaidAt = &at
	return enrollment, nil
}

func (r *OrderRepository) FindEnrollment(learnerID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("learner_id = ? AND course_id = ?", learnerID, courseID).First(&e).Error
	return &e, err
}

func (r *OrderRepository) ListEnrollments(learnerID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Preload("Course").Where("learner_id = ?", learnerID).Order("enrolled_at desc").Find(&es).Error
	return es, err
}
