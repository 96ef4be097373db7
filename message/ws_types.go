package message

import "encoding/json"

// WS 上行消息类型
const (
	WsTypeJoin        = "join"         // 进入话题（建立消息订阅）
	WsTypeLeave       = "leave"        // 离开话题
	WsTypeMessage     = "message"      // 发送消息
	WsTypeCreateTopic = "create_topic" // 新建话题
	WsTypeCloseTopic  = "close_topic"  // 关闭话题（只有创建者会被放行）
)

// Req WS 上行请求
type Req struct {
	Type        string `json:"type"`                   // join/leave/message/create_topic/close_topic
	TopicID     string `json:"topic_id,omitempty"`     // join/message/close_topic 用
	Text        string `json:"text,omitempty"`         // message：文本内容
	Title       string `json:"title,omitempty"`        // create_topic：标题
	Description string `json:"description,omitempty"`  // create_topic：描述
	CreatorName string `json:"creator_name,omitempty"` // create_topic：展示昵称（可选）
	PacketID    string `json:"packet_id,omitempty"`    // 可选：客户端匹配 ack
}

// Push WS 下行事件信封。Data 里放快照或错误详情。
type Push struct {
	Event    string          `json:"event"`
	TopicID  string          `json:"topic_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	PacketID string          `json:"packet_id,omitempty"`
}

// ErrorData error 事件的 Data
type ErrorData struct {
	Msg string `json:"msg"`
}
