package models

const (
	prefix = "anon_"
)

// 业务限制（与前端表单保持一致）
const (
	TitleMaxLen       = 40  // 话题标题最大长度
	DescriptionMaxLen = 100 // 话题描述最大长度
	OwnerNameMaxLen   = 30  // 展示昵称最大长度
)

// Topic 话题表
// 对应文档库里的 "topics" 集合，列表按 created_at 倒序。
// ID 由 store 生成（UUID），对调用方是不透明字符串。
type Topic struct {
	ID           string `gorm:"primarykey;size:36" json:"id"`
	Title        string `gorm:"size:40;not null" json:"title"`          // 标题（必填，≤40）
	Description  string `gorm:"size:100" json:"description"`            // 描述（可选，≤100）
	CreatedAt    int64  `gorm:"index;not null" json:"createdAt"`        // 创建时间（毫秒）
	MessageCount int    `gorm:"default:0" json:"messageCount"`          // 消息数（仅建档时写入，之后不维护）
	Closed       bool   `gorm:"default:false" json:"closed"`            // 是否已关闭（单向，只会 false -> true）
	OwnerID      string `gorm:"size:36;index" json:"ownerId,omitempty"` // 创建者 guest id（可为空，空表示无主/历史数据）
	OwnerName    string `gorm:"size:100" json:"ownerName,omitempty"`    // 创建者展示昵称（空时展示层退回 OwnerID）
}

func (Topic) TableName() string {
	return prefix + "topic"
}

// Message 消息表
// 对应文档库里的 "topics/{topicId}/messages" 子集合，列表按 timestamp 升序。
// 消息创建后不可修改、不可删除。
type Message struct {
	ID        string `gorm:"primarykey;size:36" json:"id"`
	TopicID   string `gorm:"size:36;index;not null" json:"topicId"`  // 所属话题 ID（创建后不变）
	Text      string `gorm:"type:text;not null" json:"text"`         // 文本内容（去空白后非空）
	SenderID  string `gorm:"size:36;index;not null" json:"senderId"` // 发送者 guest id
	Timestamp int64  `gorm:"index;not null" json:"timestamp"`        // 发送时间（毫秒），用于排序
}

func (Message) TableName() string {
	return prefix + "message"
}
