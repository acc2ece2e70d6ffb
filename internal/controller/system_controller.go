package controller

import (
	"qbank_backend/internal/service"
	"qbank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SystemController struct {
	Service *service.SystemService
}

func NewSystemController(svc *service.SystemService) *SystemController {
	return &SystemController{Service: svc}
}

// @Summary 创建系统
// @Tags 系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SystemReq true "系统信息"
// @Success 201 {object} util.Response{data=model.System}
// @Failure 404 {object} util.Response "科目不存在"
// @Router /api/systems [post]
func (c *SystemController) Create(ctx *gin.Context) {
	var req service.SystemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	system, err := c.Service.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, system)
}

// @Summary 系统列表
// @Tags 系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.System}
// @Router /api/systems [get]
func (c *SystemController) List(ctx *gin.Context) {
	systems, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, systems)
}

// @Summary 获取系统
// @Tags 系统
// @Produce json
// @Security BearerAuth
// @Param id path string true "系统ID"
// @Success 200 {object} util.Response{data=model.System}
// @Router /api/systems/{id} [get]
func (c *SystemController) Get(ctx *gin.Context) {
	system, err := c.Service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, system)
}

// @Summary 按科目获取系统
// @Tags 系统
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "科目ID"
// @Success 200 {object} util.Response{data=[]model.System}
// @Failure 404 {object} util.Response "科目不存在"
// @Router /api/systems/by-subject/{subjectId} [get]
func (c *SystemController) ListBySubject(ctx *gin.Context) {
	systems, err := c.Service.ListBySubject(ctx.Request.Context(), ctx.Param("subjectId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, systems)
}

// @Summary 更新系统
// @Tags 系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "系统ID"
// @Param body body service.SystemReq true "系统信息"
// @Success 200 {object} util.Response{data=model.System}
// @Router /api/systems/{id} [put]
func (c *SystemController) Update(ctx *gin.Context) {
	var req service.SystemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	system, err := c.Service.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, system)
}

// @Summary 删除系统
// @Tags 系统
// @Produce json
// @Security BearerAuth
// @Param id path string true "系统ID"
// @Success 200 {object} util.Response
// @Router /api/systems/{id} [delete]
func (c *SystemController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "System deleted successfully"})
}

// @Summary 创建子系统
// @Tags 子系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubSystemReq true "子系统信息"
// @Success 201 {object} util.Response{data=model.SubSystem}
// @Failure 400 {object} util.Response "系统ID无效"
// @Router /api/subsystems [post]
func (c *SystemController) CreateSubSystem(ctx *gin.Context) {
	var req service.SubSystemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Service.CreateSubSystem(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary 子系统列表
// @Tags 子系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.SubSystem}
// @Router /api/subsystems [get]
func (c *SystemController) ListSubSystems(ctx *gin.Context) {
	subs, err := c.Service.ListSubSystems(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary 获取子系统
// @Tags 子系统
// @Produce json
// @Security BearerAuth
// @Param id path string true "子系统ID"
// @Success 200 {object} util.Response{data=model.SubSystem}
// @Router /api/subsystems/{id} [get]
func (c *SystemController) GetSubSystem(ctx *gin.Context) {
	sub, err := c.Service.GetSubSystem(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// @Summary 按系统获取子系统
// @Tags 子系统
// @Produce json
// @Security BearerAuth
// @Param systemId path string true "系统ID"
// @Success 200 {object} util.Response{data=[]model.SubSystem}
// @Failure 404 {object} util.Response "该系统下没有子系统"
// @Router /api/subsystems/by-system/{systemId} [get]
func (c *SystemController) ListSubSystemsBySystem(ctx *gin.Context) {
	subs, err := c.Service.ListSubSystemsBySystem(ctx.Request.Context(), ctx.Param("systemId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary 更新子系统
// @Tags 子系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "子系统ID"
// @Param body body service.SubSystemReq true "子系统信息"
// @Success 200 {object} util.Response{data=model.SubSystem}
// @Router /api/subsystems/{id} [put]
func (c *SystemController) UpdateSubSystem(ctx *gin.Context) {
	var req service.SubSystemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Service.UpdateSubSystem(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// @Summary 删除子系统
// @Tags 子系统
// @Produce json
// @Security BearerAuth
// @Param id path string true "子系统ID"
// @Success 200 {object} util.Response
// @Router /api/subsystems/{id} [delete]
func (c *SystemController) DeleteSubSystem(ctx *gin.Context) {
	if err := c.Service.DeleteSubSystem(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Deleted successfully"})
}
