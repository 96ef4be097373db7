package anonchat

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ihsann009/anonchat/cons"
	"github.com/ihsann009/anonchat/message"
	"github.com/ihsann009/anonchat/models"
	"github.com/ihsann009/anonchat/service"
	"github.com/ihsann009/anonchat/store"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for SDK
	},
}

// Client ws和网关的连接
// 每个连接都是一个独立的展示层消费者：持有自己的话题订阅，
// join 之后再持有自己的房间会话（消息订阅）。订阅互不共享，
// 断开时全部取消。
type Client struct {
	hub *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// GuestID 连接时带上来的匿名身份
	GuestID string

	// 话题订阅取消句柄
	topicsUnsub store.Unsubscribe

	// 当前房间会话（可能为 nil）
	room *service.RoomSession

	// sendMu 保护 send 的关闭状态，订阅回调可能晚于 unregister 到达
	sendMu sync.Mutex
	closed bool
}

// enqueue 把一条下行消息放进发送缓冲。连接已关或缓冲满时丢弃。
func (c *Client) enqueue(b []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		log.Printf("ws: client %s send buffer full, dropping", c.GuestID)
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.sendMu.Unlock()
}

// pushEvent 编码一条下行事件
func (c *Client) pushEvent(event, topicID, packetID string, data interface{}) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("ws: marshal %s failed: %v", event, err)
			return
		}
		raw = b
	}
	b, err := json.Marshal(message.Push{Event: event, TopicID: topicID, Data: raw, PacketID: packetID})
	if err != nil {
		log.Printf("ws: marshal push failed: %v", err)
		return
	}
	c.enqueue(b)
}

func (c *Client) pushError(packetID, msg string) {
	c.pushEvent(cons.EventError, "", packetID, message.ErrorData{Msg: msg})
}

// readPump 将消息从client (websocket 连接) 到网关处理。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.handleMessage(c, msg)
	}
}

// writePump 将消息从网关写到具体的client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WsServer WS 推送网关
type WsServer struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	quitOnce   sync.Once
	mu         sync.RWMutex

	// 回调处理消息（engine 注入，见 ws_on_function.go）
	onMessage func(client *Client, msg []byte)

	// subscribeTopics 为新连接建立话题订阅（engine 注入）
	subscribeTopics func(onUpdate func([]models.Topic)) (store.Unsubscribe, error)
}

func NewWsServer() *WsServer {
	return &WsServer{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

func (h *WsServer) Run() {
	for {
		select {
		case <-h.quit:
			// 停机：取消所有连接的订阅并关闭发送通道
			h.mu.Lock()
			clients := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				clients = append(clients, c)
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()

			for _, c := range clients {
				if c.topicsUnsub != nil {
					c.topicsUnsub()
					c.topicsUnsub = nil
				}
				if c.room != nil {
					c.room.Close()
					c.room = nil
				}
				c.closeSend()
			}
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			// 每个连接一条独立的话题订阅：注册后立即收到当前快照
			if h.subscribeTopics != nil {
				unsub, err := h.subscribeTopics(func(topics []models.Topic) {
					client.pushEvent(cons.EventTopicsSnapshot, "", "", topics)
				})
				if err != nil {
					// 订阅建不起来对这个连接是终态错误
					log.Printf("ws: topics subscription failed for %s: %v", client.GuestID, err)
					client.pushError("", "unable to connect to chat service")
				} else {
					client.topicsUnsub = unsub
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
			}
			h.mu.Unlock()

			if ok {
				if client.topicsUnsub != nil {
					client.topicsUnsub()
					client.topicsUnsub = nil
				}
				if client.room != nil {
					client.room.Close()
					client.room = nil
				}
				client.closeSend()
			}
		}
	}
}

// Stop 结束 Run 循环，清掉所有连接。可重复调用。
func (h *WsServer) Stop() {
	h.quitOnce.Do(func() { close(h.quit) })
}

func (h *WsServer) handleMessage(c *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(c, msg)
	}
}

// ClientCount 当前活跃连接数
func (h *WsServer) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS 把一个 HTTP 请求升级成 WS 连接并注册到网关。
// guestID 为空时生成一个临时身份（不持久化）。
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, guestID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	if guestID == "" {
		guestID = service.NewGuestID()
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		GuestID: guestID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
