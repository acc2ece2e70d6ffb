package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

// 题目上传的字段名与数量上限
const (
	FieldQuestionImages     = "questionImages"
	FieldAnswerImages       = "answerImages"
	FieldCorrectReasonImage = "correctReasonImage"

	MaxQuestionImages     = 5
	MaxAnswerImages       = 10
	MaxCorrectReasonImage = 1
)

var (
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}
)
