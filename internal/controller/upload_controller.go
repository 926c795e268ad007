package controller

import (
	"english_edu_backend/internal/service"
	"english_edu_backend/internal/util"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

// formFile 读取表单文件；请求体超过上限（包括无 Content-Length 的分块请求）时返回 413
func formFile(ctx *gin.Context) (*multipart.FileHeader, bool) {
	file, err := ctx.FormFile("file")
	if err == nil {
		return file, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	util.BadRequest(ctx, "file is required")
	return nil, false
}

// Upload godoc
// @Summary 上传文件
// @Description 文件保存在 uploads/<用户ID>/<目录> 下
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "文件"
// @Param folder formData string true "目录"
// @Success 201 {object} util.Response{data=service.UploadResult}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Router /teacher/uploads [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	file, ok := formFile(ctx)
	if !ok {
		return
	}
	res, err := c.StorageService.UploadForUser(ctx.Request.Context(), util.GetUserFromContext(ctx), file, ctx.PostForm("folder"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// Delete godoc
// @Summary 删除文件
// @Description 只能删除自己上传的文件，管理员除外
// @Tags 文件
// @Security ApiKeyAuth
// @Param key query string true "对象键"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /teacher/uploads [delete]
func (c *UploadController) Delete(ctx *gin.Context) {
	if err := c.StorageService.DeleteForUser(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Query("key")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
