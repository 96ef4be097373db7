package anonchat

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/ihsann009/anonchat/middleware"
	"github.com/ihsann009/anonchat/models"
	"github.com/ihsann009/anonchat/response"
	"github.com/ihsann009/anonchat/store"
)

// GinHandleListMessages 话题消息列表
// @Summary 话题消息
// @Description 返回某话题的消息快照（按时间升序）
// @Tags 消息
// @Produce json
// @Param topic_id query string true "话题ID"
// @Success 200 {object} response.Response{data=[]models.Message} "消息列表"
// @Router /message/list [get]
func (c *ChatEngine) GinHandleListMessages(ctx *gin.Context) {
	topicID := ctx.Query("topic_id")
	if topicID == "" {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, "topic_id is required"))
		return
	}

	// 订阅立即回放当前快照，拿到后马上退订。
	// 远端变体的重查回调可能晚于退订到达，快照读写都过锁。
	var mu sync.Mutex
	var snap []models.Message
	unsub, err := c.Store.SubscribeMessages(topicID, func(msgs []models.Message) {
		mu.Lock()
		snap = msgs
		mu.Unlock()
	})
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	unsub()

	mu.Lock()
	out := snap
	mu.Unlock()
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleSendMessage 发送消息
// @Summary 发送消息
// @Description 向话题发送一条文本消息
// @Tags 消息
// @Accept json
// @Produce json
// @Param req body object true "消息（topic_id, text）"
// @Success 200 {object} response.Response{data=models.Message} "发送的消息"
// @Router /message/send [post]
func (c *ChatEngine) GinHandleSendMessage(ctx *gin.Context) {
	var req struct {
		TopicID string `json:"topic_id"`
		Text    string `json:"text"`
		GuestID string `json:"guest_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}

	guestID := req.GuestID
	if v := middleware.GuestIDFromContext(ctx); v != "" {
		guestID = v
	}
	if guestID == "" {
		guestID = c.Identity.GetOrCreateGuestID()
	}

	msg, err := c.Store.SendMessage(ctx.Request.Context(), req.TopicID, req.Text, guestID)
	if err != nil {
		code := response.CodeInternalError
		switch {
		case errors.Is(err, store.ErrEmptyText):
			code = response.CodeEmptyText
		case errors.Is(err, store.ErrTopicNotFound):
			code = response.CodeTopicNotFound
		}
		ctx.JSON(http.StatusOK, response.Error(code, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(msg))
}
