package anonchat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ihsann009/anonchat/message"
	"github.com/ihsann009/anonchat/service"
	"github.com/ihsann009/anonchat/store"
)

// newTestEngine 不走 NewEngine 的单例，直接搭一套内存 store 的引擎
func newTestEngine(t *testing.T) *ChatEngine {
	t.Helper()
	e := &ChatEngine{config: &Config{}}
	e.Store = store.New(nil, nil)
	e.Identity = service.NewIdentityService(t.TempDir())

	base := &service.Service{Store: e.Store, Identity: e.Identity}
	e.DirectoryService = service.NewDirectoryService(base)
	e.RoomService = service.NewRoomService(base)
	if err := e.DirectoryService.Start(); err != nil {
		t.Fatalf("directory Start err: %v", err)
	}
	t.Cleanup(e.DirectoryService.Stop)

	e.WsServer = NewWsServer()
	e.bindWsHandlers()
	return e
}

func TestWsCreateTopic_OwnedByRequestingClient(t *testing.T) {
	e := newTestEngine(t)
	client := &Client{hub: e.WsServer, send: make(chan []byte, 16), GuestID: "guest_77777"}

	req, err := json.Marshal(message.Req{Type: message.WsTypeCreateTopic, Title: "mine", CreatorName: "Remy"})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	e.WsServer.onMessage(client, req)

	topics := e.DirectoryService.Topics()
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	// 归属必须是发请求的连接身份，不是本机身份
	if topics[0].OwnerID != "guest_77777" {
		t.Fatalf("owner must be the requesting client, got %q", topics[0].OwnerID)
	}

	// 创建者随后能关掉自己的话题
	if err := e.Store.CloseTopic(context.Background(), topics[0].ID, "guest_77777"); err != nil {
		t.Fatalf("CloseTopic err: %v", err)
	}
	got, ok := e.DirectoryService.Topic(topics[0].ID)
	if !ok || !got.Closed {
		t.Fatalf("creator must be able to close its own topic, got %#v", got)
	}
}

func TestWsServer_StopEndsRunLoop(t *testing.T) {
	h := NewWsServer()
	done := make(chan struct{})
	go func() { h.Run(); close(done) }()

	h.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run must return after Stop")
	}
	// 可重复调用
	h.Stop()
}

func TestWsServer_StopClosesClients(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	client := &Client{hub: h, send: make(chan []byte, 1), GuestID: "guest_00042"}
	h.register <- client

	h.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-client.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("client send channel must close on Stop")
		}
	}
}
