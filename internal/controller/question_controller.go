package controller

import (
	"encoding/json"
	"mime/multipart"
	"qbank_backend/internal/model"
	"qbank_backend/internal/repository"
	"qbank_backend/internal/service"
	"qbank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 单次请求中表单（含文件）的内存上限
const maxQuestionFormMemory = 32 << 20

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

func formValue(form *multipart.Form, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}

// parseQuestionForm 解析题目的 multipart 表单，answers / existingQuestionImages 为 JSON 字符串
func parseQuestionForm(ctx *gin.Context) (service.QuestionInput, error) {
	var in service.QuestionInput
	if err := ctx.Request.ParseMultipartForm(maxQuestionFormMemory); err != nil {
		return in, util.Validationf("Invalid multipart form: %v", err)
	}
	form := ctx.Request.MultipartForm

	in.QuestionCode, _ = formValue(form, "questionId")
	in.SubjectID, _ = formValue(form, "subject", "subjectId")
	in.SystemID, _ = formValue(form, "system", "systemId")
	in.SubSystemID, _ = formValue(form, "subsystem", "subSystem", "subSystemId")
	in.Question, _ = formValue(form, "question")
	in.CorrectReasonDetails, _ = formValue(form, "correctReasonDetails")
	if qt, ok := formValue(form, "questionType"); ok {
		in.QuestionType = model.QuestionType(qt)
	}

	if raw, ok := formValue(form, "answers"); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Answers); err != nil {
			return in, util.Validationf("answers must be a JSON array")
		}
		if in.Answers == nil {
			in.Answers = []service.AnswerOptionInput{}
		}
	}
	if raw, ok := formValue(form, "existingQuestionImages"); ok {
		images := []model.Image{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &images); err != nil {
				return in, util.Validationf("existingQuestionImages must be a JSON array")
			}
		}
		in.ExistingQuestionImages = &images
	}
	if raw, ok := formValue(form, "keepCorrectReasonImage"); ok {
		in.KeepCorrectReasonImage = util.ParseFormBool(raw)
	}

	in.QuestionImages = form.File[util.FieldQuestionImages]
	in.AnswerImages = form.File[util.FieldAnswerImages]
	if files := form.File[util.FieldCorrectReasonImage]; len(files) > 0 {
		if len(files) > util.MaxCorrectReasonImage {
			return in, util.Validationf("At most %d correct reason image is allowed", util.MaxCorrectReasonImage)
		}
		in.CorrectReasonImage = files[0]
	}
	return in, nil
}

// @Summary 创建题目
// @Description multipart 表单：questionImages 最多5张，answerImages 最多10张按下标对应选项，correctReasonImage 最多1张
// @Tags 题目
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param questionId formData string true "题号"
// @Param subject formData string true "科目ID"
// @Param system formData string true "系统ID"
// @Param subsystem formData string false "子系统ID"
// @Param question formData string true "题干"
// @Param questionType formData string true "MCQ / TrueFalse / ShortAnswer"
// @Param answers formData string true "选项 JSON 数组"
// @Param correctReasonDetails formData string false "解析"
// @Param questionImages formData file false "题干图片"
// @Param answerImages formData file false "选项图片"
// @Param correctReasonImage formData file false "解析图片"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 409 {object} util.Response "题号已存在"
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	in, err := parseQuestionForm(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	q, err := c.Service.Create(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary 题目列表
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param subjectId query string false "科目ID"
// @Param systemId query string false "系统ID"
// @Param subSystemId query string false "子系统ID"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	questions, err := c.Service.List(ctx.Request.Context(), repository.QuestionFilter{
		SubjectID:   ctx.Query("subjectId"),
		SystemID:    ctx.Query("systemId"),
		SubSystemID: ctx.Query("subSystemId"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 获取题目
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	q, err := c.Service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 更新题目
// @Description 未提交 existingQuestionImages 时保留原题干图片；keepCorrectReasonImage=false 移除解析图片
// @Tags 题目
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Param existingQuestionImages formData string false "保留的题干图片 JSON 数组"
// @Param keepCorrectReasonImage formData bool false "是否保留解析图片"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	in, err := parseQuestionForm(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	q, err := c.Service.Update(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 删除题目
// @Description 同时删除题目引用的全部图片
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Question and images deleted successfully"})
}
