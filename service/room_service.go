package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ihsann009/anonchat/models"
	"github.com/ihsann009/anonchat/store"
)

var (
	ErrSendInProgress  = errors.New("send already in progress")
	ErrCloseInProgress = errors.New("close already in progress")
	ErrNotSubscribed   = errors.New("room has no active topic")
)

// RoomService 房间同步的入口：为某个话题打开 RoomSession，
// 并承担两类写操作（发消息、关话题）的身份打标。
type RoomService struct {
	*Service
}

func NewRoomService(s *Service) *RoomService {
	return &RoomService{Service: s}
}

// CanClose 判断是否应该向展示层提供“关闭话题”入口。
// 只是 UI 层面的提示性判断，不是安全边界；真正的放行规则在 store 里。
func (s *RoomService) CanClose(topic *models.Topic, guestID string) bool {
	if topic == nil || topic.Closed {
		return false
	}
	return topic.OwnerID != "" && topic.OwnerID == guestID
}

// Open 打开一个房间会话并订阅消息。guestID 为空时用本机身份。
// onUpdate 的第一个参数是快照所属的话题，切换话题后仍然可辨。
func (s *RoomService) Open(topicID, guestID string, onUpdate func(topicID string, msgs []models.Message)) (*RoomSession, error) {
	if guestID == "" {
		guestID = s.Identity.GetOrCreateGuestID()
	}
	rs := &RoomSession{
		svc:      s,
		guestID:  guestID,
		onUpdate: onUpdate,
	}
	if err := rs.SwitchTo(topicID); err != nil {
		return nil, err
	}
	return rs, nil
}

// RoomSession 单个房间的同步状态。
//
// 订阅按话题 ID 维护：切换话题时先取消旧订阅再建新订阅。
// 消息快照：Loading 在首个快照到达时清掉，之后保持 Populated。
// 发送：Idle -> Sending -> Idle，重叠的发送直接拒绝；失败时由调用方
// 决定是否保留草稿重发（这里不重试）。
// 关闭：Idle -> Closing -> Idle，成功后调用方应离开房间视图。
type RoomSession struct {
	svc *RoomService

	mu       sync.Mutex
	topicID  string
	guestID  string
	messages []models.Message
	loading  bool
	sending  bool
	closing  bool
	unsub    store.Unsubscribe
	onUpdate func(topicID string, msgs []models.Message)
}

// TopicID 当前订阅的话题。
func (rs *RoomSession) TopicID() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.topicID
}

// GuestID 会话绑定的身份。
func (rs *RoomSession) GuestID() string {
	return rs.guestID
}

// Loading 首个消息快照到达前为 true。
func (rs *RoomSession) Loading() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.loading
}

// Messages 返回最近一次快照的拷贝（按时间升序）。
func (rs *RoomSession) Messages() []models.Message {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	snap := make([]models.Message, len(rs.messages))
	copy(snap, rs.messages)
	return snap
}

// SwitchTo 切换到另一个话题：先取消旧订阅，再订阅新话题的消息流。
// 新订阅建立失败时旧订阅已经取消，会话处于无话题状态。
func (rs *RoomSession) SwitchTo(topicID string) error {
	rs.mu.Lock()
	old := rs.unsub
	rs.unsub = nil
	// 先指向新话题：订阅可能在返回前就同步回放首个快照
	rs.topicID = topicID
	rs.messages = nil
	rs.loading = true
	rs.mu.Unlock()

	if old != nil {
		old()
	}

	unsub, err := rs.svc.Store.SubscribeMessages(topicID, func(msgs []models.Message) {
		rs.mu.Lock()
		// 晚到的回调可能属于已经切走的话题，丢弃
		if rs.topicID != topicID {
			rs.mu.Unlock()
			return
		}
		rs.messages = msgs
		rs.loading = false
		fn := rs.onUpdate
		rs.mu.Unlock()

		if fn != nil {
			fn(topicID, msgs)
		}
	})
	if err != nil {
		rs.mu.Lock()
		rs.topicID = ""
		rs.loading = false
		rs.mu.Unlock()
		return fmt.Errorf("room: %w", err)
	}

	rs.mu.Lock()
	rs.unsub = unsub
	rs.mu.Unlock()
	return nil
}

// Send 发送一条消息，发送者打上会话身份。
// 空白文本在进 store 之前就拒绝；失败只记日志并返回错误，不重试。
func (rs *RoomSession) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return store.ErrEmptyText
	}

	rs.mu.Lock()
	if rs.topicID == "" {
		rs.mu.Unlock()
		return ErrNotSubscribed
	}
	if rs.sending {
		rs.mu.Unlock()
		return ErrSendInProgress
	}
	rs.sending = true
	topicID := rs.topicID
	rs.mu.Unlock()

	_, err := rs.svc.Store.SendMessage(ctx, topicID, text, rs.guestID)

	rs.mu.Lock()
	rs.sending = false
	rs.mu.Unlock()

	if err != nil {
		log.Printf("room: send to %s failed: %v", topicID, err)
		return err
	}
	return nil
}

// CloseTopic 以会话身份请求关闭当前话题。
// store 按归属规则放行；无权限时是静默 no-op（见 store.Store 约定）。
func (rs *RoomSession) CloseTopic(ctx context.Context) error {
	rs.mu.Lock()
	if rs.topicID == "" {
		rs.mu.Unlock()
		return ErrNotSubscribed
	}
	if rs.closing {
		rs.mu.Unlock()
		return ErrCloseInProgress
	}
	rs.closing = true
	topicID := rs.topicID
	rs.mu.Unlock()

	err := rs.svc.Store.CloseTopic(ctx, topicID, rs.guestID)

	rs.mu.Lock()
	rs.closing = false
	rs.mu.Unlock()

	if err != nil {
		log.Printf("room: close %s failed: %v", topicID, err)
		return err
	}
	return nil
}

// Close 退出房间，取消消息订阅。可重复调用。
func (rs *RoomSession) Close() {
	rs.mu.Lock()
	unsub := rs.unsub
	rs.unsub = nil
	rs.topicID = ""
	rs.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}
