package store

import (
	"context"
	"errors"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/ihsann009/anonchat/models"
	"gorm.io/gorm"
)

// 写入/校验相关的哨兵错误
var (
	ErrTitleRequired = errors.New("topic title is required")
	ErrEmptyText     = errors.New("message text is empty")
	ErrTopicNotFound = errors.New("topic not found")
)

// Unsubscribe 取消订阅句柄。调用后该监听器不再收到任何回调，可重复调用。
type Unsubscribe func()

// Store 话题/消息的持久化与实时订阅抽象。
//
// 两种实现（remote / memory）对调用方行为一致：
//   - 订阅注册后立即用当前快照回调一次，之后每次数据变化都回调完整快照；
//   - 话题快照按 CreatedAt 倒序，消息快照按 Timestamp 升序；
//   - 同一订阅内回调按变更顺序投递，多个订阅相互独立；
//   - 取消订阅是同步的，已发出的写入不会被取消，只是结果不再回调。
//
// 实现由 New 在启动时一次性选定，调用方不要再判断后端是否配置。
type Store interface {
	// SubscribeTopics 订阅话题列表变化。
	SubscribeTopics(onUpdate func(topics []models.Topic)) (Unsubscribe, error)

	// CreateTopic 新建话题（closed=false、messageCount=0，ID/CreatedAt 由 store 生成）。
	CreateTopic(ctx context.Context, title, description, ownerID, ownerName string) (*models.Topic, error)

	// CloseTopic 关闭话题（closed 单向置 true）。
	// 放行规则：话题无主、或 requestedBy 为空（历史兼容）、或 requestedBy 等于 OwnerID；
	// 不满足时静默忽略，不返回错误。
	CloseTopic(ctx context.Context, topicID, requestedBy string) error

	// SubscribeMessages 订阅某个话题的消息列表变化。
	SubscribeMessages(topicID string, onUpdate func(messages []models.Message)) (Unsubscribe, error)

	// SendMessage 发送消息。文本去空白后必须非空，话题必须存在。
	SendMessage(ctx context.Context, topicID, text, senderID string) (*models.Message, error)

	// Close 释放底层资源（远端实现会断开所有订阅）。
	Close() error
}

// New 按配置选定 store 实现：DB 和 RDB 都配置时用远端实现，否则退回内存实现。
// 这是唯一一处做变体选择的地方。
func New(db *gorm.DB, rdb *redis.Client) Store {
	if db != nil && rdb != nil {
		return NewRemoteStore(db, rdb)
	}
	if db != nil || rdb != nil {
		log.Println("store: remote backend needs both DB and RDB, falling back to in-memory store")
	}
	return NewMemoryStore()
}
