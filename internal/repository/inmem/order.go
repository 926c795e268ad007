package inmem

import (
	"english_edu_backend/internal/model"
	"sort"
	"time"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *model.Order) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&o.BaseModel)
	cp := *o
	r.db.orders[cp.ID] = &cp
	return nil
}

func (r *OrderRepository) FindByID(id uint) (*model.Order, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if o, ok := r.db.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *OrderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if o, ok := r.db.orders[id]; ok {
		o.Status = status
	}
	return nil
}

func (r *OrderRepository) ListByLearner(learnerID uint) ([]model.Order, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var os []model.Order
	for _, o := range r.db.orders {
		if o.LearnerID == learnerID {
			os = append(os, *o)
		}
	}
	sort.Slice(os, func(i, j int) bool { return os[i].ID > os[j].ID })
	return os, nil
}

func (r *OrderRepository) MarkPaidAndEnroll(order *model.Order, at time.Time) (*model.Enrollment, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	stored, ok := r.db.orders[order.ID]
	if !ok || stored.Status != model.OrderPending {
		return nil, gorm.ErrRecordNotFound
	}
	for _, e := range r.db.enrollments {
		if e.LearnerID == order.LearnerID && e.CourseID == order.CourseID {
			return nil, gorm.ErrDuplicatedKey
		}
	}

	enrollment := &model.Enrollment{
		LearnerID:  order.LearnerID,
		CourseID:   order.CourseID,
		OrderID:    order.ID,
		EnrolledAt: at,
	}
	r.db.touch(&enrollment.BaseModel)
	cp := *enrollment
	r.db.enrollments[cp.ID] = &cp

	stored.Status = model.OrderPaid
	stored.PaidAt = &at
	order.Status = model.OrderPaid
	order.PaidAt = &at
	return enrollment, nil
}

func (r *OrderRepository) FindEnrollment(learnerID, courseID uint) (*model.Enrollment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, e := range r.db.enrollments {
		if e.LearnerID == learnerID && e.CourseID == courseID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *OrderRepository) ListEnrollments(learnerID uint) ([]model.Enrollment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var es []model.Enrollment
	for _, e := range r.db.enrollments {
		if e.LearnerID != learnerID {
			continue
		}
		cp := *e
		if c, ok := r.db.courses[e.CourseID]; ok {
			course := *c
			cp.Course = &course
		}
		es = append(es, cp)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].EnrolledAt.After(es[j].EnrolledAt) })
	return es, nil
}
