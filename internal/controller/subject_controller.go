package controller

import (
	"qbank_backend/internal/service"
	"qbank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	Service *service.SubjectService
}

func NewSubjectController(svc *service.SubjectService) *SubjectController {
	return &SubjectController{Service: svc}
}

// @Summary 创建科目
// @Tags 科目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubjectReq true "科目名称"
// @Success 201 {object} util.Response{data=model.Subject}
// @Failure 409 {object} util.Response "科目已存在"
// @Router /api/subjects [post]
func (c *SubjectController) Create(ctx *gin.Context) {
	var req service.SubjectReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// @Summary 科目列表
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/subjects [get]
func (c *SubjectController) List(ctx *gin.Context) {
	subjects, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// @Summary 获取科目
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Param id path string true "科目ID"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{id} [get]
func (c *SubjectController) Get(ctx *gin.Context) {
	subject, err := c.Service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// @Summary 更新科目
// @Tags 科目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "科目ID"
// @Param body body service.SubjectReq true "科目名称"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{id} [put]
func (c *SubjectController) Update(ctx *gin.Context) {
	var req service.SubjectReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// @Summary 删除科目
// @Tags 科目
// @Produce json
// @Security BearerAuth
// @Param id path string true "科目ID"
// @Success 200 {object} util.Response
// @Router /api/subjects/{id} [delete]
func (c *SubjectController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Subject deleted successfully"})
}
