package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ihsann009/anonchat/models"
	"github.com/ihsann009/anonchat/store"
)

// DirectoryService 话题目录同步：持有对 store 的唯一一条话题订阅，
// 把推过来的快照作为本地话题列表的权威状态。
//
// loading 标志只会从 true 变为 false 一次（首个快照到达时）；
// Start 同步失败时 loading 同样清掉，错误进入终态，不自动重试，
// 只有 Stop 后重新 Start 才会重建订阅。
type DirectoryService struct {
	*Service

	mu      sync.Mutex
	topics  []models.Topic
	loading bool
	err     error
	started bool
	unsub   store.Unsubscribe

	// onChange 可选：每个快照到达后通知展示层（WS 网关等）
	onChange func([]models.Topic)
}

func NewDirectoryService(s *Service) *DirectoryService {
	return &DirectoryService{Service: s}
}

// OnChange 注册快照回调，必须在 Start 之前调用。
func (s *DirectoryService) OnChange(fn func([]models.Topic)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Start 建立话题订阅。重复调用是 no-op。
func (s *DirectoryService) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	unsub, err := s.Store.SubscribeTopics(func(topics []models.Topic) {
		s.mu.Lock()
		s.topics = topics
		s.loading = false
		fn := s.onChange
		s.mu.Unlock()

		if fn != nil {
			fn(topics)
		}
	})
	if err != nil {
		// 订阅建不起来：loading 清掉，错误进入终态
		s.mu.Lock()
		s.loading = false
		s.err = err
		s.mu.Unlock()
		return fmt.Errorf("directory: %w", err)
	}

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
	return nil
}

// Stop 取消订阅。之后可再次 Start 重建。
func (s *DirectoryService) Stop() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.started = false
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Topics 返回最近一次快照的拷贝。
func (s *DirectoryService) Topics() []models.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make([]models.Topic, len(s.topics))
	copy(snap, s.topics)
	return snap
}

// Topic 按 id 在当前快照里找话题。
func (s *DirectoryService) Topic(topicID string) (*models.Topic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.topics {
		if s.topics[i].ID == topicID {
			t := s.topics[i]
			return &t, true
		}
	}
	return nil, false
}

// Loading 首个快照到达前为 true。
func (s *DirectoryService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err 返回订阅建立失败的终态错误（没有则为 nil）。
func (s *DirectoryService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CreateTopic 新建话题，归属打上请求方的 guest 身份。
//
// creatorID 是请求方的身份（WS 连接或中间件带进来的）；为空时才退回
// 本机身份（嵌入式客户端场景）。归属必须是请求方，否则创建者后续
// 关不掉自己的话题。
// 调用方侧校验：标题去空白后必填、按上限截断；昵称为空时退回 guest id。
// 本机身份建题时昵称持久化，下次默认带出（和前端建题弹窗行为一致）。
func (s *DirectoryService) CreateTopic(ctx context.Context, title, description, creatorName, creatorID string) (*models.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, store.ErrTitleRequired
	}
	title = truncate(title, models.TitleMaxLen)
	description = truncate(strings.TrimSpace(description), models.DescriptionMaxLen)

	local := creatorID == ""
	ownerID := creatorID
	if local {
		ownerID = s.Identity.GetOrCreateGuestID()
	}
	ownerName := truncate(strings.TrimSpace(creatorName), models.OwnerNameMaxLen)
	if ownerName == "" {
		ownerName = ownerID
	} else if local {
		s.Identity.SetGuestName(ownerName)
	}

	topic, err := s.Store.CreateTopic(ctx, title, description, ownerID, ownerName)
	if err != nil {
		return nil, err
	}
	if s.Debug {
		log.Printf("directory: topic %s created by %s", topic.ID, ownerID)
	}
	return topic, nil
}

// truncate 按 rune 截断，避免把多字节字符切坏。
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
