// Package docs 由 swag 注释生成的 OpenAPI 文档
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/api/register": {
			"post": {
				"summary": "注册新用户",
				"description": "公开注册的账号角色固定为 user",
				"tags": [
					"认证"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "用户注册信息",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "创建成功",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "请求参数错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "邮箱已被注册",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"500": {
						"description": "服务器内部错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/login": {
			"post": {
				"summary": "用户登录",
				"tags": [
					"认证"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "登录凭证",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "token 与用户信息",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "邮箱或密码错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/users": {
			"post": {
				"summary": "管理员创建用户",
				"tags": [
					"用户"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "用户信息",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "邮箱已被注册",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"get": {
				"summary": "用户列表（不含当前用户）",
				"tags": [
					"用户"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/users/{id}": {
			"get": {
				"summary": "获取用户信息",
				"description": "本人或管理员",
				"tags": [
					"用户"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "用户ID",
						"type": "integer"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"put": {
				"summary": "更新用户信息",
				"description": "本人或管理员；仅管理员可修改角色",
				"tags": [
					"用户"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "用户ID",
						"type": "integer"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "待更新字段",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除用户",
				"tags": [
					"用户"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "用户ID",
						"type": "integer"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/subjects": {
			"post": {
				"summary": "创建科目",
				"tags": [
					"科目"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "科目名称",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "科目已存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"get": {
				"summary": "科目列表",
				"tags": [
					"科目"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/subjects/{id}": {
			"get": {
				"summary": "获取科目",
				"tags": [
					"科目"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "科目ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"put": {
				"summary": "更新科目",
				"tags": [
					"科目"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "科目ID",
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "科目名称",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除科目",
				"tags": [
					"科目"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "科目ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/systems": {
			"post": {
				"summary": "创建系统",
				"tags": [
					"系统"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "系统信息",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "科目不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"get": {
				"summary": "系统列表",
				"tags": [
					"系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/systems/{id}": {
			"get": {
				"summary": "获取系统",
				"tags": [
					"系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "系统ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"put": {
				"summary": "更新系统",
				"tags": [
					"系统"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "系统ID",
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "系统信息",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除系统",
				"tags": [
					"系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "系统ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/systems/by-subject/{subjectId}": {
			"get": {
				"summary": "按科目获取系统",
				"tags": [
					"系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "subjectId",
						"in": "path",
						"required": true,
						"description": "科目ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "科目不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/subsystems": {
			"post": {
				"summary": "创建子系统",
				"tags": [
					"子系统"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "子系统信息",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "系统ID无效",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"get": {
				"summary": "子系统列表",
				"tags": [
					"子系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/subsystems/{id}": {
			"get": {
				"summary": "获取子系统",
				"tags": [
					"子系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "子系统ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"put": {
				"summary": "更新子系统",
				"tags": [
					"子系统"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "子系统ID",
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "子系统信息",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除子系统",
				"tags": [
					"子系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "子系统ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/subsystems/by-system/{systemId}": {
			"get": {
				"summary": "按系统获取子系统",
				"tags": [
					"子系统"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "systemId",
						"in": "path",
						"required": true,
						"description": "系统ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "该系统下没有子系统",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/questions": {
			"post": {
				"summary": "创建题目",
				"description": "multipart 表单：questionImages 最多5张，answerImages 最多10张按下标对应选项，correctReasonImage 最多1张",
				"tags": [
					"题目"
				],
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "questionId",
						"in": "formData",
						"required": true,
						"description": "题号",
						"type": "string"
					},
					{
						"name": "subject",
						"in": "formData",
						"required": true,
						"description": "科目ID",
						"type": "string"
					},
					{
						"name": "system",
						"in": "formData",
						"required": true,
						"description": "系统ID",
						"type": "string"
					},
					{
						"name": "subsystem",
						"in": "formData",
						"required": false,
						"description": "子系统ID",
						"type": "string"
					},
					{
						"name": "question",
						"in": "formData",
						"required": true,
						"description": "题干",
						"type": "string"
					},
					{
						"name": "questionType",
						"in": "formData",
						"required": true,
						"description": "MCQ / TrueFalse / ShortAnswer",
						"type": "string"
					},
					{
						"name": "answers",
						"in": "formData",
						"required": true,
						"description": "选项 JSON 数组",
						"type": "string"
					},
					{
						"name": "correctReasonDetails",
						"in": "formData",
						"required": false,
						"description": "解析",
						"type": "string"
					},
					{
						"name": "questionImages",
						"in": "formData",
						"required": false,
						"description": "题干图片",
						"type": "file"
					},
					{
						"name": "answerImages",
						"in": "formData",
						"required": false,
						"description": "选项图片",
						"type": "file"
					},
					{
						"name": "correctReasonImage",
						"in": "formData",
						"required": false,
						"description": "解析图片",
						"type": "file"
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "题号已存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"get": {
				"summary": "题目列表",
				"tags": [
					"题目"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "subjectId",
						"in": "query",
						"required": false,
						"description": "科目ID",
						"type": "string"
					},
					{
						"name": "systemId",
						"in": "query",
						"required": false,
						"description": "系统ID",
						"type": "string"
					},
					{
						"name": "subSystemId",
						"in": "query",
						"required": false,
						"description": "子系统ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/questions/{id}": {
			"get": {
				"summary": "获取题目",
				"tags": [
					"题目"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "题目ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "题目不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"put": {
				"summary": "更新题目",
				"description": "未提交 existingQuestionImages 时保留原题干图片；keepCorrectReasonImage=false 移除解析图片",
				"tags": [
					"题目"
				],
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "题目ID",
						"type": "string"
					},
					{
						"name": "existingQuestionImages",
						"in": "formData",
						"required": false,
						"description": "保留的题干图片 JSON 数组",
						"type": "string"
					},
					{
						"name": "keepCorrectReasonImage",
						"in": "formData",
						"required": false,
						"description": "是否保留解析图片",
						"type": "boolean"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除题目",
				"description": "同时删除题目引用的全部图片",
				"tags": [
					"题目"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "题目ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/count/fromSubject": {
			"get": {
				"summary": "各科目题目数量",
				"tags": [
					"统计"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/count/fromSystem": {
			"get": {
				"summary": "各系统题目数量",
				"tags": [
					"统计"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/count/by-subjects-system": {
			"post": {
				"summary": "指定科目下各系统题目数量",
				"tags": [
					"统计"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "科目ID列表",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "subjectIds 不能为空",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz": {
			"post": {
				"summary": "按科目随机组卷",
				"tags": [
					"测验"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "科目ID列表、每科题数、时长",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "没有可用题目",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"get": {
				"summary": "获取全部测验",
				"tags": [
					"测验"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除全部测验",
				"tags": [
					"测验"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/create": {
			"post": {
				"summary": "按系统随机组卷",
				"tags": [
					"测验"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "系统ID列表、每个系统题数、时长",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "没有可用题目",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/{id}": {
			"get": {
				"summary": "获取测验详情",
				"description": "未作答且未交卷的题目不返回选项正误与解析；管理员可传 reveal=true 查看全部",
				"tags": [
					"测验"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "测验ID",
						"type": "string"
					},
					{
						"name": "reveal",
						"in": "query",
						"required": false,
						"description": "显示答案（仅管理员）",
						"type": "boolean"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "测验不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			},
			"delete": {
				"summary": "删除测验",
				"description": "仅测验所有者或管理员",
				"tags": [
					"测验"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "测验ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"403": {
						"description": "无权限",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "测验不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/submit/{quizId}": {
			"post": {
				"summary": "一次性交卷",
				"description": "可重复提交，后一次覆盖前一次的作答与分数",
				"tags": [
					"测验"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "quizId",
						"in": "path",
						"required": true,
						"description": "测验ID",
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "作答列表",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "参数错误",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "测验不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/{id}/answer": {
			"post": {
				"summary": "逐题作答",
				"tags": [
					"测验"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "测验ID",
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "选项ID或答案文本",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "参数错误或测验已交卷",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "测验或题目不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/{id}/answer/{questionId}": {
			"post": {
				"summary": "逐题作答",
				"tags": [
					"测验"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "测验ID",
						"type": "string"
					},
					{
						"name": "questionId",
						"in": "path",
						"required": false,
						"description": "题目ID，也可放在请求体中",
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"description": "选项ID或答案文本",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "参数错误或测验已交卷",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "测验或题目不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/{id}/finish": {
			"post": {
				"summary": "结束逐题作答并交卷",
				"tags": [
					"测验"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"description": "测验ID",
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "测验已交卷",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "测验不存在",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/quiz/mine": {
			"get": {
				"summary": "获取我的测验",
				"tags": [
					"测验"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/api/health": {
			"get": {
				"summary": "健康检查",
				"description": "检查数据库与缓存连接",
				"tags": [
					"系统"
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"503": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"util.Response": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"data": {},
				"message": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}
`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "QBank 题库后端 API",
	Description:      "题库与随机组卷测验服务。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
