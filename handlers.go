package anonchat

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/ihsann009/anonchat/models"
	"github.com/ihsann009/anonchat/response"
	"github.com/ihsann009/anonchat/store"
)

/*
	HTTP处理 更建议自己写HTTP的处理，然后调用对应的service，而不是获得这里的闭包来调用
	WS 网关才是实时推送的主通道，这里的接口给不方便开 WS 的调用方做一次性读写
*/

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTitleRequired):
		response.Error(response.CodeParamError, err.Error()).WriteJSON(w)
	case errors.Is(err, store.ErrEmptyText):
		response.Error(response.CodeEmptyText, err.Error()).WriteJSON(w)
	case errors.Is(err, store.ErrTopicNotFound):
		response.Error(response.CodeTopicNotFound, err.Error()).WriteJSON(w)
	default:
		response.Error(response.CodeInternalError, err.Error()).WriteJSON(w)
	}
}

// HandleListTopics 话题列表的 HTTP Handler
// @Summary 话题列表
// @Description 返回当前话题快照（按创建时间倒序）
// @Tags 话题
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Topic} "话题列表"
// @Router /topic/list [get]
func (c *ChatEngine) HandleListTopics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.DirectoryService.Err(); err != nil {
			response.Error(response.CodeInternalError, err.Error()).WriteJSON(w)
			return
		}
		response.Success(c.DirectoryService.Topics()).WriteJSON(w)
	}
}

// HandleCreateTopic 新建话题的 HTTP Handler
// @Summary 新建话题
// @Description 新建一个讨论话题，归属打上请求方的 guest 身份
// @Tags 话题
// @Accept json
// @Produce json
// @Param req body object true "话题信息（title, description, creator_name, guest_id）"
// @Success 200 {object} response.Response{data=models.Topic} "新建的话题"
// @Failure 200 {object} response.Response "参数错误"
// @Router /topic/create [post]
func (c *ChatEngine) HandleCreateTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			CreatorName string `json:"creator_name"`
			GuestID     string `json:"guest_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(response.CodeParamError, err.Error()).WriteJSON(w)
			return
		}

		topic, err := c.DirectoryService.CreateTopic(r.Context(), req.Title, req.Description, req.CreatorName, req.GuestID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		response.Success(topic).WriteJSON(w)
	}
}

// HandleCloseTopic 关闭话题的 HTTP Handler
// @Summary 关闭话题
// @Description 关闭话题（仅创建者会被放行；无主话题不限制）
// @Tags 话题
// @Accept json
// @Produce json
// @Param req body object true "关闭信息（topic_id, guest_id）"
// @Success 200 {object} response.Response "成功响应"
// @Router /topic/close [post]
func (c *ChatEngine) HandleCloseTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TopicID string `json:"topic_id"`
			GuestID string `json:"guest_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(response.CodeParamError, err.Error()).WriteJSON(w)
			return
		}
		if req.TopicID == "" {
			response.Error(response.CodeParamError, "topic_id is required").WriteJSON(w)
			return
		}

		if err := c.Store.CloseTopic(r.Context(), req.TopicID, req.GuestID); err != nil {
			writeStoreError(w, err)
			return
		}
		response.Success(nil).WriteJSON(w)
	}
}

// HandleListMessages 获取话题消息列表
// @Summary 话题消息
// @Description 返回某话题的消息快照（按时间升序）
// @Tags 消息
// @Produce json
// @Param topic_id query string true "话题ID"
// @Success 200 {object} response.Response{data=[]models.Message} "消息列表"
// @Router /message/list [get]
func (c *ChatEngine) HandleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topicID := r.URL.Query().Get("topic_id")
		if topicID == "" {
			response.Error(response.CodeParamError, "topic_id is required").WriteJSON(w)
			return
		}

		// 订阅会立即回放当前快照，拿到后马上退订，相当于一次性读取。
		// 远端变体的重查回调可能晚于退订到达，快照读写都过锁。
		var mu sync.Mutex
		var snap []models.Message
		unsub, err := c.Store.SubscribeMessages(topicID, func(msgs []models.Message) {
			mu.Lock()
			snap = msgs
			mu.Unlock()
		})
		if err != nil {
			response.Error(response.CodeInternalError, err.Error()).WriteJSON(w)
			return
		}
		unsub()

		mu.Lock()
		out := snap
		mu.Unlock()
		response.Success(out).WriteJSON(w)
	}
}

// HandleSendMessage 发送消息的 HTTP Handler
// @Summary 发送消息
// @Description 向话题发送一条文本消息
// @Tags 消息
// @Accept json
// @Produce json
// @Param req body object true "消息（topic_id, text, guest_id）"
// @Success 200 {object} response.Response{data=models.Message} "发送的消息"
// @Router /message/send [post]
func (c *ChatEngine) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TopicID string `json:"topic_id"`
			Text    string `json:"text"`
			GuestID string `json:"guest_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(response.CodeParamError, err.Error()).WriteJSON(w)
			return
		}
		if req.GuestID == "" {
			req.GuestID = c.Identity.GetOrCreateGuestID()
		}

		msg, err := c.Store.SendMessage(r.Context(), req.TopicID, req.Text, req.GuestID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		response.Success(msg).WriteJSON(w)
	}
}
