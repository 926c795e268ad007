package controller

import (
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// OrderController 订单与选课
type OrderController struct {
	OrderService *service.OrderService
}

func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{OrderService: orderService}
}

// Checkout godoc
// @Summary 下单
// @Description 免费课程直接开通
// @Tags 订单
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CheckoutRequest true "课程"
// @Success 201 {object} util.Response{data=service.CheckoutResult}
// @Failure 400 {object} util.Response "已选课"
// @Router /orders [post]
func (c *OrderController) Checkout(ctx *gin.Context) {
	var req service.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	res, err := c.OrderService.Checkout(util.GetUserFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// Pay godoc
// @Summary 确认支付
// @Tags 订单
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单ID"
// @Success 200 {object} util.Response{data=service.CheckoutResult}
// @Router /orders/{id}/pay [post]
func (c *OrderController) Pay(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid order id")
		return
	}
	res, err := c.OrderService.Pay(util.GetUserFromContext(ctx).UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// Cancel godoc
// @Summary 取消订单
// @Tags 订单
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "订单ID"
// @Success 200 {object} util.Response{data=model.Order}
// @Router /orders/{id}/cancel [post]
func (c *OrderController) Cancel(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid order id")
		return
	}
	order, err := c.OrderService.Cancel(util.GetUserFromContext(ctx).UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, order)
}

// ListMine godoc
// @Summary 我的订单
// @Tags 订单
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Order}
// @Router /orders/my [get]
func (c *OrderController) ListMine(ctx *gin.Context) {
	orders, err := c.OrderService.ListMine(util.GetUserFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, orders)
}

// ListEnrollments godoc
// @Summary 我的课程
// @Tags 订单
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /enrollments/my [get]
func (c *OrderController) ListEnrollments(ctx *gin.Context) {
	es, err := c.OrderService.ListEnrollments(util.GetUserFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, es)
}
