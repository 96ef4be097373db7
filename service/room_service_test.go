package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ihsann009/anonchat/models"
	"github.com/ihsann009/anonchat/store"
)

func setupRoom(t *testing.T) (*Service, *RoomService, *models.Topic) {
	t.Helper()
	svc := newTestService(t)
	room := NewRoomService(svc)

	topic, err := svc.Store.CreateTopic(context.Background(), "General", "", "guest_00001", "Alex")
	if err != nil {
		t.Fatalf("CreateTopic err: %v", err)
	}
	return svc, room, topic
}

// blockingStore 把写操作卡在半路的桩，用来测重叠写入的拒绝
type blockingStore struct {
	store.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) SendMessage(ctx context.Context, topicID, text, senderID string) (*models.Message, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.SendMessage(ctx, topicID, text, senderID)
}

func (b *blockingStore) CloseTopic(ctx context.Context, topicID, requestedBy string) error {
	b.entered <- struct{}{}
	<-b.release
	return b.Store.CloseTopic(ctx, topicID, requestedBy)
}

func TestRoomSession_OverlappingSendRejected(t *testing.T) {
	svc, room, topic := setupRoom(t)
	// entered 带缓冲：release 关掉之后的写入不再有人消费 entered
	blocker := &blockingStore{
		Store:   svc.Store,
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	svc.Store = blocker

	rs, err := room.Open(topic.ID, "guest_00002", nil)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer rs.Close()
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- rs.Send(ctx, "first") }()
	<-blocker.entered

	// 第一条还在路上：第二条直接拒绝，不等待
	if err := rs.Send(ctx, "second"); !errors.Is(err, ErrSendInProgress) {
		t.Fatalf("expected ErrSendInProgress, got %v", err)
	}

	close(blocker.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first send err: %v", err)
	}

	// 第一条落地后状态回到 Idle，可以继续发
	if err := rs.Send(ctx, "third"); err != nil {
		t.Fatalf("send after completion err: %v", err)
	}
}

func TestRoomSession_OverlappingCloseRejected(t *testing.T) {
	svc, room, topic := setupRoom(t)
	blocker := &blockingStore{
		Store:   svc.Store,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc.Store = blocker

	rs, err := room.Open(topic.ID, "guest_00001", nil)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer rs.Close()
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- rs.CloseTopic(ctx) }()
	<-blocker.entered

	if err := rs.CloseTopic(ctx); !errors.Is(err, ErrCloseInProgress) {
		t.Fatalf("expected ErrCloseInProgress, got %v", err)
	}

	close(blocker.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first close err: %v", err)
	}
}

func TestRoomSession_LoadingAndSnapshot(t *testing.T) {
	_, room, topic := setupRoom(t)

	var got [][]models.Message
	rs, err := room.Open(topic.ID, "guest_00002", func(_ string, msgs []models.Message) {
		got = append(got, msgs)
	})
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer rs.Close()

	// 内存 store 同步回放：Open 返回时已 Populated
	if rs.Loading() {
		t.Fatalf("loading must clear on first snapshot")
	}
	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("expected one empty snapshot, got %#v", got)
	}

	if err := rs.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	msgs := rs.Messages()
	if len(msgs) != 1 || msgs[0].Text != "hello" || msgs[0].SenderID != "guest_00002" {
		t.Fatalf("send must be tagged with the session identity, got %#v", msgs)
	}
}

func TestRoomSession_SendValidation(t *testing.T) {
	_, room, topic := setupRoom(t)

	rs, err := room.Open(topic.ID, "guest_00002", nil)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer rs.Close()

	if err := rs.Send(context.Background(), "   "); !errors.Is(err, store.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if len(rs.Messages()) != 0 {
		t.Fatalf("rejected send must not create a message")
	}
}

func TestRoomSession_SwitchTopic(t *testing.T) {
	svc, room, first := setupRoom(t)
	ctx := context.Background()

	second, err := svc.Store.CreateTopic(ctx, "Other", "", "guest_00001", "Alex")
	if err != nil {
		t.Fatalf("CreateTopic err: %v", err)
	}

	var lastTopic string
	var lastSnap []models.Message
	rs, err := room.Open(first.ID, "guest_00002", func(topicID string, msgs []models.Message) {
		lastTopic = topicID
		lastSnap = msgs
	})
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer rs.Close()

	if err := rs.SwitchTo(second.ID); err != nil {
		t.Fatalf("SwitchTo err: %v", err)
	}
	if rs.TopicID() != second.ID {
		t.Fatalf("session must track the new topic")
	}

	// 旧话题的写入不再回调到会话
	if _, err := svc.Store.SendMessage(ctx, first.ID, "old room", "guest_00003"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if len(lastSnap) != 0 {
		t.Fatalf("old topic writes must not reach the session, got %#v", lastSnap)
	}

	// 新话题的写入会
	if _, err := svc.Store.SendMessage(ctx, second.ID, "new room", "guest_00003"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if len(lastSnap) != 1 || lastSnap[0].Text != "new room" {
		t.Fatalf("expected snapshot from the new topic, got %#v", lastSnap)
	}
	if lastTopic != second.ID {
		t.Fatalf("callback must carry the new topic id, got %q", lastTopic)
	}
}

func TestRoomSession_CloseTopicOwnership(t *testing.T) {
	svc, room, topic := setupRoom(t)
	ctx := context.Background()

	snapshot := func(id string) models.Topic {
		t.Helper()
		var snap []models.Topic
		unsub, _ := svc.Store.SubscribeTopics(func(topics []models.Topic) { snap = topics })
		unsub()
		for _, tp := range snap {
			if tp.ID == id {
				return tp
			}
		}
		t.Fatalf("topic %s missing", id)
		return models.Topic{}
	}

	// 非创建者的会话：关闭是 no-op
	other, err := room.Open(topic.ID, "guest_99999", nil)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer other.Close()
	if err := other.CloseTopic(ctx); err != nil {
		t.Fatalf("CloseTopic err: %v", err)
	}
	if snapshot(topic.ID).Closed {
		t.Fatalf("non-owner close must not take effect")
	}

	// 创建者的会话：生效
	owner, err := room.Open(topic.ID, "guest_00001", nil)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer owner.Close()
	if err := owner.CloseTopic(ctx); err != nil {
		t.Fatalf("CloseTopic err: %v", err)
	}
	if !snapshot(topic.ID).Closed {
		t.Fatalf("owner close must take effect")
	}
}

func TestRoomService_CanClose(t *testing.T) {
	_, room, _ := setupRoom(t)

	open := &models.Topic{OwnerID: "guest_00001", Closed: false}
	if !room.CanClose(open, "guest_00001") {
		t.Fatalf("owner of an open topic can close")
	}
	if room.CanClose(open, "guest_99999") {
		t.Fatalf("non-owner must not be offered close")
	}

	closed := &models.Topic{OwnerID: "guest_00001", Closed: true}
	if room.CanClose(closed, "guest_00001") {
		t.Fatalf("closed topic offers no close action")
	}

	unowned := &models.Topic{Closed: false}
	if room.CanClose(unowned, "guest_00001") {
		t.Fatalf("unowned topics show no close action in the UI")
	}
	if room.CanClose(nil, "guest_00001") {
		t.Fatalf("nil topic")
	}
}

func TestRoomSession_CloseStopsCallbacks(t *testing.T) {
	svc, room, topic := setupRoom(t)
	ctx := context.Background()

	calls := 0
	rs, err := room.Open(topic.ID, "guest_00002", func(string, []models.Message) { calls++ })
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected initial replay, got %d", calls)
	}

	rs.Close()
	if _, err := svc.Store.SendMessage(ctx, topic.ID, "late", "guest_00003"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("closed session must not receive callbacks, got %d", calls)
	}

	// 关闭后的写操作被拒绝
	if err := rs.Send(ctx, "hi"); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
}
