package controller

import (
	"qbank_backend/internal/service"
	"qbank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CountController struct {
	Service *service.CountService
}

func NewCountController(svc *service.CountService) *CountController {
	return &CountController{Service: svc}
}

type SubjectIDsRequest struct {
	SubjectIDs []string `json:"subjectIds"`
}

// @Summary 各科目题目数量
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.SubjectCount}
// @Router /api/count/fromSubject [get]
func (c *CountController) FromSubject(ctx *gin.Context) {
	rows, err := c.Service.BySubject(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 各系统题目数量
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.SystemCount}
// @Router /api/count/fromSystem [get]
func (c *CountController) FromSystem(ctx *gin.Context) {
	rows, err := c.Service.BySystem(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 指定科目下各系统题目数量
// @Tags 统计
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubjectIDsRequest true "科目ID列表"
// @Success 200 {object} util.Response{data=[]repository.SystemCount}
// @Failure 400 {object} util.Response "subjectIds 不能为空"
// @Router /api/count/by-subjects-system [post]
func (c *CountController) BySubjectsSystem(ctx *gin.Context) {
	var req SubjectIDsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rows, err := c.Service.SystemsBySubjects(ctx.Request.Context(), req.SubjectIDs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
