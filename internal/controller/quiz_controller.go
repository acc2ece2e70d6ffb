package controller

import (
	"qbank_backend/internal/model"
	"qbank_backend/internal/service"
	"qbank_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Service: svc}
}

// SubjectQuizRequest 按科目组卷
type SubjectQuizRequest struct {
	SubjectIDs          []string `json:"subjectIds"`
	QuestionsPerSubject *int     `json:"questionsPerSubject"`
	DurationMinutes     *int     `json:"durationMinutes"`
}

// SystemQuizRequest 按系统组卷
type SystemQuizRequest struct {
	SystemIDs          []string `json:"systemIds"`
	QuestionsPerSystem *int     `json:"questionsPerSystem"`
	DurationMinutes    *int     `json:"durationMinutes"`
}

type SubmitQuizRequest struct {
	Answers []service.SubmittedAnswer `json:"answers"`
}

func (c *QuizController) generate(ctx *gin.Context, req service.GenerateQuizReq) {
	quiz, err := c.Service.Generate(ctx.Request.Context(), callerOf(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 按科目随机组卷
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubjectQuizRequest true "科目ID列表、每科题数、时长"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "没有可用题目"
// @Router /api/quiz [post]
func (c *QuizController) CreateBySubjects(ctx *gin.Context) {
	var req SubjectQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.generate(ctx, service.GenerateQuizReq{
		GroupIDs:        req.SubjectIDs,
		CountPerGroup:   req.QuestionsPerSubject,
		DurationMinutes: req.DurationMinutes,
		Mode:            model.GroupBySubject,
	})
}

// @Summary 按系统随机组卷
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SystemQuizRequest true "系统ID列表、每个系统题数、时长"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "没有可用题目"
// @Router /api/quiz/create [post]
func (c *QuizController) CreateBySystems(ctx *gin.Context) {
	var req SystemQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.generate(ctx, service.GenerateQuizReq{
		GroupIDs:        req.SystemIDs,
		CountPerGroup:   req.QuestionsPerSystem,
		DurationMinutes: req.DurationMinutes,
		Mode:            model.GroupBySystem,
	})
}

// @Summary 获取测验详情
// @Description 未作答且未交卷的题目不返回选项正误与解析；管理员可传 reveal=true 查看全部
// @Tags 测验
// @Produce json
// @Param id path string true "测验ID"
// @Param reveal query bool false "显示答案（仅管理员）"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	reveal, _ := strconv.ParseBool(ctx.DefaultQuery("reveal", "false"))

	view, err := c.Service.Present(ctx.Request.Context(), callerOf(ctx), ctx.Param("id"), reveal)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 一次性交卷
// @Description 可重复提交，后一次覆盖前一次的作答与分数
// @Tags 测验
// @Accept json
// @Produce json
// @Param quizId path string true "测验ID"
// @Param body body SubmitQuizRequest true "作答列表"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/submit/{quizId} [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Submit(ctx.Request.Context(), ctx.Param("quizId"), req.Answers)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 逐题作答
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "测验ID"
// @Param questionId path string false "题目ID，也可放在请求体中"
// @Param body body service.AnswerInput true "选项ID或答案文本"
// @Success 200 {object} util.Response{data=service.QuestionResult}
// @Failure 400 {object} util.Response "参数错误或测验已交卷"
// @Failure 404 {object} util.Response "测验或题目不存在"
// @Router /api/quiz/{id}/answer [post]
// @Router /api/quiz/{id}/answer/{questionId} [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	var req struct {
		QuestionID string `json:"questionId"`
		service.AnswerInput
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	questionID := ctx.Param("questionId")
	if questionID == "" {
		questionID = req.QuestionID
	}
	if questionID == "" {
		util.BadRequest(ctx, "questionId is required")
		return
	}

	result, err := c.Service.AnswerOne(ctx.Request.Context(), ctx.Param("id"), questionID, req.AnswerInput)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 结束逐题作答并交卷
// @Tags 测验
// @Produce json
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "测验已交卷"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id}/finish [post]
func (c *QuizController) Finish(ctx *gin.Context) {
	result, err := c.Service.Finish(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取全部测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quiz [get]
func (c *QuizController) List(ctx *gin.Context) {
	quizzes, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary 获取我的测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quiz/mine [get]
func (c *QuizController) ListMine(ctx *gin.Context) {
	quizzes, err := c.Service.ListMine(ctx.Request.Context(), callerOf(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary 删除测验
// @Description 仅测验所有者或管理员
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), callerOf(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Quiz deleted successfully"})
}

// @Summary 删除全部测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz [delete]
func (c *QuizController) DeleteAll(ctx *gin.Context) {
	n, err := c.Service.DeleteAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": n})
}
