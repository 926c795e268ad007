package controller

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuestionController 题库与评分标准接口
type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// ListQuestions godoc
// @Summary 题库列表
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param skill query string false "技能"
// @Param type query string false "题型"
// @Param level query string false "难度"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.QuestionFilter{
		Skill: ctx.Query("skill"),
		Type:  model.QuestionType(ctx.Query("type")),
		Level: ctx.Query("level"),
	}
	qs, total, err := c.QuestionService.ListQuestions(filter, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, qs, total, page, limit)
}

// GetQuestion godoc
// @Summary 题目详情
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	q, err := c.QuestionService.GetQuestion(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// CreateQuestion godoc
// @Summary 创建题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionRequest true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.CreateQuestion(util.GetUserFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionRequest true "题目"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.UpdateQuestion(util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Description 被考试引用的题目不能删除
// @Tags 题库
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	if err := c.QuestionService.DeleteQuestion(util.GetUserFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListRubrics godoc
// @Summary 评分标准列表
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /rubrics [get]
func (c *QuestionController) ListRubrics(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	rbs, total, err := c.QuestionService.ListRubrics(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, rbs, total, page, limit)
}

// GetRubric godoc
// @Summary 评分标准详情
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "评分标准ID"
// @Success 200 {object} util.Response{data=model.Rubric}
// @Router /rubrics/{id} [get]
func (c *QuestionController) GetRubric(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid rubric id")
		return
	}
	rb, err := c.QuestionService.GetRubric(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rb)
}

// CreateRubric godoc
// @Summary 创建评分标准
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.RubricRequest true "评分标准"
// @Success 201 {object} util.Response{data=model.Rubric}
// @Router /rubrics [post]
func (c *QuestionController) CreateRubric(ctx *gin.Context) {
	var req service.RubricRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	rb, err := c.QuestionService.CreateRubric(util.GetUserFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, rb)
}

// UpdateRubric godoc
// @Summary 更新评分标准
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "评分标准ID"
// @Param body body service.RubricRequest true "评分标准"
// @Success 200 {object} util.Response{data=model.Rubric}
// @Router /rubrics/{id} [put]
func (c *QuestionController) UpdateRubric(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid rubric id")
		return
	}
	var req service.RubricRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	rb, err := c.QuestionService.UpdateRubric(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rb)
}

// DeleteRubric godoc
// @Summary 删除评分标准
// @Tags 题库
// @Security ApiKeyAuth
// @Param id path int true "评分标准ID"
// @Success 200 {object} util.Response
// @Router /rubrics/{id} [delete]
func (c *QuestionController) DeleteRubric(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid rubric id")
		return
	}
	if err := c.QuestionService.DeleteRubric(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
