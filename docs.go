// Package anonchat 提供匿名话题聊天 SDK 核心能力
// @title AnonChat API
// @version 1.0
// @description 匿名话题聊天的 RESTful API 文档，包含话题、消息两个模块
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 话题不存在 |
// @description | 10003 | 话题已关闭 |
// @description | 10004 | 消息内容为空 |
// @description | 99999 | 内部错误 |
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
// @description
// @description 实时推送走 WS 网关（/ws?guest_id=xxx），HTTP 接口只做一次性读写。
// @BasePath /api/v1
package anonchat
