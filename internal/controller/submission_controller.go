package controller

import (
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// SubmitExam godoc
// @Summary 提交考试答案
// @Description 自动评分客观题；含主观题或非自动评分的考试返回 pending_review，passed 为 null
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "考试ID"
// @Param body body service.SubmitExamRequest true "答案"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "答案格式错误"
// @Failure 404 {object} util.Response "考试不存在或未发布"
// @Router /exams/{id}/submit [post]
func (c *SubmissionController) SubmitExam(ctx *gin.Context) {
	examID, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	var req service.SubmitExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	viewer := util.GetUserFromContext(ctx)
	sub, err := c.SubmissionService.Submit(ctx.Request.Context(), viewer.UserID, examID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// ListMine godoc
// @Summary 我的提交记录
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /submissions/my [get]
func (c *SubmissionController) ListMine(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	subs, total, err := c.SubmissionService.ListMine(util.GetUserFromContext(ctx).UserID, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, subs, total, page, limit)
}

// GetSubmission godoc
// @Summary 提交详情
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "提交ID"
// @Success 200 {object} util.Response{data=model.Submission}
// @Failure 403 {object} util.Response
// @Router /submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid submission id")
		return
	}
	sub, err := c.SubmissionService.Get(util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// ListForExam godoc
// @Summary 考试的全部提交
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /exams/{id}/submissions [get]
func (c *SubmissionController) ListForExam(ctx *gin.Context) {
	examID, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	page, limit := util.Pagination(ctx)
	subs, total, err := c.SubmissionService.ListForExam(util.GetUserFromContext(ctx), examID, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, subs, total, page, limit)
}
