package service

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/logger"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(o *model.Order) error
	FindByID(id uint) (*model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	ListByLearner(learnerID uint) ([]model.Order, error)
	MarkPaidAndEnroll(order *model.Order, at time.Time) (*model.Enrollment, error)
	FindEnrollment(learnerID, courseID uint) (*model.Enrollment, error)
	ListEnrollments(learnerID uint) ([]model.Enrollment, error)
}

type CourseFinder interface {
	FindByID(id uint) (*model.Course, error)
}

// OrderService 下单服务，支付在外部完成，Pay 为确认步骤并开通课程
type OrderService struct {
	Repo    OrderRepo
	Courses CourseFinder
	Now     func() time.Time
}

func NewOrderService(repo OrderRepo, courses CourseFinder) *OrderService {
	return &OrderService{Repo: repo, Courses: courses, Now: time.Now}
}

type CheckoutRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

type CheckoutResult struct {
	Order      *model.Order      `json:"order"`
	Enrollment *model.Enrollment `json:"enrollment,omitempty"`
}

func (s *OrderService) ensureNotEnrolled(learnerID, courseID uint) error {
	_, err := s.Repo.FindEnrollment(learnerID, courseID)
	if err == nil {
		return util.ErrAlreadyEnrolled
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storeErr(err)
	}
	return nil
}

// enrollErr 选课唯一键冲突时返回 ErrAlreadyEnrolled
func enrollErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyEnrolled
	}
	return storeErr(err)
}

func (s *OrderService) Checkout(learnerID uint, req CheckoutRequest) (*CheckoutResult, error) {
	course, err := s.Courses.FindByID(req.CourseID)
	if err != nil {
		return nil, lookupErr(err, "course", req.CourseID)
	}
	if course.Status != model.CoursePublished {
		return nil, util.NotFoundf("course %d not found", req.CourseID)
	}
	if err := s.ensureNotEnrolled(learnerID, course.ID); err != nil {
		return nil, err
	}

	order := &model.Order{
		LearnerID: learnerID,
		CourseID:  course.ID,
		Amount:    course.Price,
		Status:    model.OrderPending,
	}
	if err := s.Repo.Create(order); err != nil {
		return nil, storeErr(err)
	}

	result := &CheckoutResult{Order: order}
	// 免费课程直接开通
	if course.Price == 0 {
		enrollment, err := s.Repo.MarkPaidAndEnroll(order, s.Now())
		if err != nil {
			// 开通失败时取消刚创建的订单，避免残留待支付订单
			if cerr := s.Repo.UpdateStatus(order.ID, model.OrderCancelled); cerr != nil {
				logger.Log.Warn("取消免费订单失败", zap.Uint("orderID", order.ID), zap.Error(cerr))
			}
			return nil, enrollErr(err)
		}
		result.Enrollment = enrollment
	}

	logger.Log.Info("order created",
		zap.Uint("orderID", order.ID),
		zap.Uint("courseID", course.ID),
		zap.Int64("amount", order.Amount),
		zap.String("status", string(order.Status)),
	)
	return result, nil
}

func (s *OrderService) ownOrder(learnerID, orderID uint) (*model.Order, error) {
	order, err := s.Repo.FindByID(orderID)
	if err != nil {
		return nil, lookupErr(err, "order", orderID)
	}
	if order.LearnerID != learnerID {
		return nil, util.Forbiddenf("order %d belongs to another learner", orderID)
	}
	return order, nil
}

func (s *OrderService) Pay(learnerID, orderID uint) (*CheckoutResult, error) {
	order, err := s.ownOrder(learnerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, util.Validationf("order %d is %s", orderID, order.Status)
	}
	if err := s.ensureNotEnrolled(learnerID, order.CourseID); err != nil {
		return nil, err
	}

	enrollment, err := s.Repo.MarkPaidAndEnroll(order, s.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 并发支付或取消
		return nil, util.Validationf("order %d is no longer pending", orderID)
	}
	if err != nil {
		return nil, enrollErr(err)
	}

	logger.Log.Info("order paid", zap.Uint("orderID", order.ID), zap.Uint("courseID", order.CourseID))
	return &CheckoutResult{Order: order, Enrollment: enrollment}, nil
}

func (s *OrderService) Cancel(learnerID, orderID uint) (*model.Order, error) {
	order, err := s.ownOrder(learnerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, util.Validationf("order %d is %s", orderID, order.Status)
	}
	if err := s.Repo.UpdateStatus(order.ID, model.OrderCancelled); err != nil {
		return nil, storeErr(err)
	}
	order.Status = model.OrderCancelled
	return order, nil
}

func (s *OrderService) ListMine(learnerID uint) ([]model.Order, error) {
	orders, err := s.Repo.ListByLearner(learnerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return orders, nil
}

func (s *OrderService) ListEnrollments(learnerID uint) ([]model.Enrollment, error) {
	es, err := s.Repo.ListEnrollments(learnerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return es, nil
}
