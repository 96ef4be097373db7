package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/ihsann009/anonchat/models"
	"gorm.io/gorm"
)

// Redis 频道设计：
// - anonchat:topics                话题集合有变化（新建/关闭）
// - anonchat:messages:{topicID}    某个话题的消息集合有变化
// 频道上只发轻量变更信号，订阅方收到后重新查全量快照，
// 与文档库“推送整个集合快照”的语义对齐（ID 稳定，无需去重）。
const (
	topicsChannel      = "anonchat:topics"
	messagesChannelFmt = "anonchat:messages:%s"
)

// RemoteStore 远端实现：gorm 持久化 + Redis pub/sub 推送变更。
type RemoteStore struct {
	db  *gorm.DB
	rdb *redis.Client

	ctx    context.Context
	cancel context.CancelFunc

	// 记录在途的 PubSub，Close 时统一关掉
	mu      sync.Mutex
	pubsubs map[uint64]*redis.PubSub
	nextID  uint64
}

func NewRemoteStore(db *gorm.DB, rdb *redis.Client) *RemoteStore {
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteStore{
		db:      db,
		rdb:     rdb,
		ctx:     ctx,
		cancel:  cancel,
		pubsubs: make(map[uint64]*redis.PubSub),
	}
}

func (s *RemoteStore) listTopics() ([]models.Topic, error) {
	var topics []models.Topic
	err := s.db.Model(&models.Topic{}).
		Order("created_at DESC").
		Find(&topics).Error
	return topics, err
}

func (s *RemoteStore) listMessages(topicID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.Model(&models.Message{}).
		Where("topic_id = ?", topicID).
		Order("timestamp ASC").
		Find(&msgs).Error
	return msgs, err
}

// subscribe 建立一条订阅：先查一次快照立即回调，然后起一个 goroutine，
// 每收到一条频道消息就重查快照再回调。同一订阅的回调在单 goroutine 里
// 顺序投递；多条订阅各自持有独立的 PubSub。
func (s *RemoteStore) subscribe(channel string, query func() error) (Unsubscribe, error) {
	if err := query(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	pubsub := s.rdb.Subscribe(s.ctx, channel)
	// 确认订阅建立，失败算 ConnectionError
	if _, err := pubsub.Receive(s.ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.pubsubs[id] = pubsub
	s.mu.Unlock()

	go func() {
		for range pubsub.Channel() {
			if err := query(); err != nil {
				// 单次查询失败不终止订阅，等下一次变更信号
				log.Printf("store: refresh %s failed: %v", channel, err)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.pubsubs, id)
			s.mu.Unlock()
			_ = pubsub.Close()
		})
	}, nil
}

func (s *RemoteStore) SubscribeTopics(onUpdate func([]models.Topic)) (Unsubscribe, error) {
	return s.subscribe(topicsChannel, func() error {
		topics, err := s.listTopics()
		if err != nil {
			return err
		}
		onUpdate(topics)
		return nil
	})
}

func (s *RemoteStore) SubscribeMessages(topicID string, onUpdate func([]models.Message)) (Unsubscribe, error) {
	channel := fmt.Sprintf(messagesChannelFmt, topicID)
	return s.subscribe(channel, func() error {
		msgs, err := s.listMessages(topicID)
		if err != nil {
			return err
		}
		onUpdate(msgs)
		return nil
	})
}

// publish 变更信号丢了也不致命（下一次写入会再发），只记日志。
func (s *RemoteStore) publish(ctx context.Context, channel string) {
	if err := s.rdb.Publish(ctx, channel, "changed").Err(); err != nil {
		log.Printf("store: publish %s failed: %v", channel, err)
	}
}

func (s *RemoteStore) CreateTopic(ctx context.Context, title, description, ownerID, ownerName string) (*models.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	topic := &models.Topic{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UnixMilli(),
		Closed:      false,
		OwnerID:     ownerID,
		OwnerName:   ownerName,
	}
	if err := s.db.WithContext(ctx).Create(topic).Error; err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}

	s.publish(ctx, topicsChannel)
	return topic, nil
}

func (s *RemoteStore) CloseTopic(ctx context.Context, topicID, requestedBy string) error {
	// 放行规则与内存实现一致，直接在 SQL 里收口：
	// 无主话题、requestedBy 为空（历史兼容）、或创建者本人
	res := s.db.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ? AND closed = ?", topicID, false).
		Where("owner_id = '' OR ? = '' OR owner_id = ?", requestedBy, requestedBy).
		Update("closed", true)
	if res.Error != nil {
		return fmt.Errorf("close topic: %w", res.Error)
	}

	// 没有行变化说明话题不存在/已关闭/无权限，按约定静默
	if res.RowsAffected > 0 {
		s.publish(ctx, topicsChannel)
	}
	return nil
}

func (s *RemoteStore) SendMessage(ctx context.Context, topicID, text, senderID string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var topic models.Topic
	if err := s.db.WithContext(ctx).First(&topic, "id = ?", topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("send message: %w", err)
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		TopicID:   topicID,
		Text:      text,
		SenderID:  senderID,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	s.publish(ctx, fmt.Sprintf(messagesChannelFmt, topicID))
	return msg, nil
}

// Close 关闭所有在途订阅并取消共享 ctx。
func (s *RemoteStore) Close() error {
	s.cancel()

	s.mu.Lock()
	for id, ps := range s.pubsubs {
		_ = ps.Close()
		delete(s.pubsubs, id)
	}
	s.mu.Unlock()
	return nil
}
