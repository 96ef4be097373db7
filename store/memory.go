package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ihsann009/anonchat/models"
)

// MemoryStore 进程内 mock 实现：写入时同步通知所有监听器。
// 用于没有配置后端时的本地演示和测试。
type MemoryStore struct {
	mu       sync.Mutex
	topics   []models.Topic
	messages map[string][]models.Message

	topicSubs map[uint64]func([]models.Topic)
	msgSubs   map[string]map[uint64]func([]models.Message)
	nextSubID uint64

	lastMilli int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages:  make(map[string][]models.Message),
		topicSubs: make(map[uint64]func([]models.Topic)),
		msgSubs:   make(map[string]map[uint64]func([]models.Message)),
	}
}

// nowMilli 返回单调递增的毫秒时间戳，保证同一进程内创建顺序可排序。
func (s *MemoryStore) nowMilli() int64 {
	now := time.Now().UnixMilli()
	if now <= s.lastMilli {
		now = s.lastMilli + 1
	}
	s.lastMilli = now
	return now
}

// topicSnapshot 返回按 CreatedAt 倒序的话题快照（调用方持有 s.mu）。
func (s *MemoryStore) topicSnapshot() []models.Topic {
	snap := make([]models.Topic, len(s.topics))
	copy(snap, s.topics)
	sort.SliceStable(snap, func(i, j int) bool {
		return snap[i].CreatedAt > snap[j].CreatedAt
	})
	return snap
}

// messageSnapshot 返回按 Timestamp 升序的消息快照（调用方持有 s.mu）。
func (s *MemoryStore) messageSnapshot(topicID string) []models.Message {
	msgs := s.messages[topicID]
	snap := make([]models.Message, len(msgs))
	copy(snap, msgs)
	return snap
}

func (s *MemoryStore) SubscribeTopics(onUpdate func([]models.Topic)) (Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.topicSubs[id] = onUpdate
	snap := s.topicSnapshot()
	s.mu.Unlock()

	// 注册后立即回放当前状态。回放在锁外：并发写入可能抢在回放前
	// 把更新的快照推给同一个监听器，之后这份较旧的快照才到。
	// 单线程使用（本实现的预期场景）没有这个交错。
	onUpdate(snap)

	return func() {
		s.mu.Lock()
		delete(s.topicSubs, id)
		s.mu.Unlock()
	}, nil
}

func (s *MemoryStore) SubscribeMessages(topicID string, onUpdate func([]models.Message)) (Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if s.msgSubs[topicID] == nil {
		s.msgSubs[topicID] = make(map[uint64]func([]models.Message))
	}
	s.msgSubs[topicID][id] = onUpdate
	snap := s.messageSnapshot(topicID)
	s.mu.Unlock()

	// 回放在锁外，交错语义同 SubscribeTopics
	onUpdate(snap)

	return func() {
		s.mu.Lock()
		delete(s.msgSubs[topicID], id)
		s.mu.Unlock()
	}, nil
}

// notifyTopics 在锁外调用监听器，避免回调里再进 store 时死锁。
func (s *MemoryStore) notifyTopics() {
	s.mu.Lock()
	snap := s.topicSnapshot()
	subs := make([]func([]models.Topic), 0, len(s.topicSubs))
	for _, cb := range s.topicSubs {
		subs = append(subs, cb)
	}
	s.mu.Unlock()

	for _, cb := range subs {
		cb(snap)
	}
}

func (s *MemoryStore) notifyMessages(topicID string) {
	s.mu.Lock()
	snap := s.messageSnapshot(topicID)
	subs := make([]func([]models.Message), 0, len(s.msgSubs[topicID]))
	for _, cb := range s.msgSubs[topicID] {
		subs = append(subs, cb)
	}
	s.mu.Unlock()

	for _, cb := range subs {
		cb(snap)
	}
}

func (s *MemoryStore) CreateTopic(ctx context.Context, title, description, ownerID, ownerName string) (*models.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	s.mu.Lock()
	topic := models.Topic{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   s.nowMilli(),
		Closed:      false,
		OwnerID:     ownerID,
		OwnerName:   ownerName,
	}
	s.topics = append(s.topics, topic)
	s.mu.Unlock()

	s.notifyTopics()
	return &topic, nil
}

func (s *MemoryStore) CloseTopic(ctx context.Context, topicID, requestedBy string) error {
	s.mu.Lock()
	changed := false
	for i := range s.topics {
		t := &s.topics[i]
		if t.ID != topicID {
			continue
		}
		// 有主话题只允许创建者关闭；requestedBy 为空按历史数据放行
		if t.OwnerID != "" && requestedBy != "" && t.OwnerID != requestedBy {
			break
		}
		if !t.Closed {
			t.Closed = true
			changed = true
		}
		break
	}
	s.mu.Unlock()

	if changed {
		s.notifyTopics()
	}
	return nil
}

func (s *MemoryStore) SendMessage(ctx context.Context, topicID, text, senderID string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	found := false
	for i := range s.topics {
		if s.topics[i].ID == topicID {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil, ErrTopicNotFound
	}
	msg := models.Message{
		ID:        uuid.New().String(),
		TopicID:   topicID,
		Text:      text,
		SenderID:  senderID,
		Timestamp: s.nowMilli(),
	}
	s.messages[topicID] = append(s.messages[topicID], msg)
	s.mu.Unlock()

	s.notifyMessages(topicID)
	return &msg, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.topicSubs = make(map[uint64]func([]models.Topic))
	s.msgSubs = make(map[string]map[uint64]func([]models.Message))
	s.mu.Unlock()
	return nil
}
