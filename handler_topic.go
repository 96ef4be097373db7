package anonchat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihsann009/anonchat/middleware"
	"github.com/ihsann009/anonchat/response"
)

// GinHandleListTopics 话题列表
// @Summary 话题列表
// @Description 返回当前话题快照（按创建时间倒序）
// @Tags 话题
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Topic} "话题列表"
// @Router /topic/list [get]
func (c *ChatEngine) GinHandleListTopics(ctx *gin.Context) {
	if err := c.DirectoryService.Err(); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(c.DirectoryService.Topics()))
}

// GinHandleCreateTopic 新建话题
// @Summary 新建话题
// @Description 新建一个讨论话题，归属打上请求方的 guest 身份
// @Tags 话题
// @Accept json
// @Produce json
// @Param req body object true "话题信息（title, description, creator_name）"
// @Success 200 {object} response.Response{data=models.Topic} "新建的话题"
// @Router /topic/create [post]
func (c *ChatEngine) GinHandleCreateTopic(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CreatorName string `json:"creator_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}

	// 归属打上请求方的身份，而不是本机身份，否则创建者关不掉自己的话题
	topic, err := c.DirectoryService.CreateTopic(ctx.Request.Context(), req.Title, req.Description, req.CreatorName, middleware.GuestIDFromContext(ctx))
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(topic))
}

// GinHandleCloseTopic 关闭话题
// @Summary 关闭话题
// @Description 关闭话题（仅创建者会被放行；无主话题不限制）
// @Tags 话题
// @Accept json
// @Produce json
// @Param req body object true "关闭信息（topic_id）"
// @Success 200 {object} response.Response "成功响应"
// @Router /topic/close [post]
func (c *ChatEngine) GinHandleCloseTopic(ctx *gin.Context) {
	var req struct {
		TopicID string `json:"topic_id"`
		GuestID string `json:"guest_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if req.TopicID == "" {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, "topic_id is required"))
		return
	}

	// 中间件放进来的身份优先于 body 里自报的
	guestID := req.GuestID
	if v := middleware.GuestIDFromContext(ctx); v != "" {
		guestID = v
	}

	if err := c.Store.CloseTopic(ctx.Request.Context(), req.TopicID, guestID); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
