package controller

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// ListPublished godoc
// @Summary 已发布考试列表
// @Tags 考试
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /exams/published [get]
func (c *ExamController) ListPublished(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	p, err := c.ExamService.ListPublished(ctx.Request.Context(), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, p.List, p.Total, page, limit)
}

// GetExam godoc
// @Summary 获取考试详情
// @Description 匿名用户和学员只能看到已发布考试且不含答案；出题教师和管理员可看到完整题目
// @Tags 考试
// @Produce json
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response{data=service.PublicExamDetail}
// @Failure 404 {object} util.Response
// @Router /exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	if viewer := util.GetUserFromContext(ctx); viewer.IsStaff() {
		detail, err := c.ExamService.GetStaffExam(viewer, id)
		if err == nil {
			util.Success(ctx, detail)
			return
		}
		// 非本人创建的考试按公开视图处理
		if !isForbidden(err) {
			util.HandleError(ctx, err)
			return
		}
	}

	detail, err := c.ExamService.GetPublicExam(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ListManaged godoc
// @Summary 教师管理的考试列表
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "状态" Enums(draft, published, archived)
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /teacher/exams [get]
func (c *ExamController) ListManaged(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	es, total, err := c.ExamService.ListManaged(util.GetUserFromContext(ctx), model.ExamStatus(ctx.Query("status")), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, es, total, page, limit)
}

// CreateExam godoc
// @Summary 创建考试
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ExamRequest true "考试信息"
// @Success 201 {object} util.Response{data=model.Exam}
// @Failure 400 {object} util.Response
// @Router /exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	viewer := util.GetUserFromContext(ctx)
	e, err := c.ExamService.CreateExam(ctx.Request.Context(), viewer.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, e)
}

// UpdateExam godoc
// @Summary 更新考试
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "考试ID"
// @Param body body service.ExamRequest true "考试信息"
// @Success 200 {object} util.Response{data=model.Exam}
// @Failure 403 {object} util.Response
// @Router /exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	e, err := c.ExamService.UpdateExam(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, e)
}

// DeleteExam godoc
// @Summary 删除考试
// @Tags 考试
// @Security ApiKeyAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	if err := c.ExamService.DeleteExam(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetApproval godoc
// @Summary 审核考试
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "考试ID"
// @Param body body service.ApprovalRequest true "审核结果"
// @Success 200 {object} util.Response{data=model.Exam}
// @Router /admin/exams/{id}/approval [patch]
func (c *ExamController) SetApproval(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	var req service.ApprovalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	e, err := c.ExamService.SetApproval(ctx.Request.Context(), id, req.ApprovalStatus)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, e)
}
