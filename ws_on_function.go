package anonchat

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ihsann009/anonchat/cons"
	"github.com/ihsann009/anonchat/message"
	"github.com/ihsann009/anonchat/models"
)

// bindWsHandlers 把 WS 回调从 engine.go 抽出来，避免 engine.go 臃肿。
// 放在包根目录（和 WsServer/engine.go 同级），可以直接访问 Client 类型，
// 避免 service 层反向依赖网关。
func (c *ChatEngine) bindWsHandlers() {
	c.WsServer.subscribeTopics = c.Store.SubscribeTopics

	c.WsServer.onMessage = func(client *Client, msg []byte) {
		var req message.Req
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Printf("Invalid message format: %v", err)
			return
		}
		if client == nil {
			return
		}
		ctx := context.Background()

		switch req.Type {
		case message.WsTypeJoin:
			if req.TopicID == "" {
				client.pushError(req.PacketID, "topic_id is required")
				return
			}
			// 已在房间里：切换订阅；否则开新会话
			if client.room != nil {
				if err := client.room.SwitchTo(req.TopicID); err != nil {
					client.pushError(req.PacketID, err.Error())
					return
				}
			} else {
				room, err := c.RoomService.Open(req.TopicID, client.GuestID, func(topicID string, msgs []models.Message) {
					client.pushEvent(cons.EventMessagesSnapshot, topicID, "", msgs)
				})
				if err != nil {
					client.pushError(req.PacketID, err.Error())
					return
				}
				client.room = room
			}
			client.pushEvent(cons.EventJoined, req.TopicID, req.PacketID, nil)

		case message.WsTypeLeave:
			if client.room != nil {
				topicID := client.room.TopicID()
				client.room.Close()
				client.room = nil
				client.pushEvent(cons.EventLeft, topicID, req.PacketID, nil)
			}

		case message.WsTypeMessage:
			if client.room == nil {
				client.pushError(req.PacketID, "join a topic first")
				return
			}
			if err := client.room.Send(ctx, req.Text); err != nil {
				// 发送失败不重试，客户端保留草稿自行重发
				client.pushError(req.PacketID, err.Error())
			}

		case message.WsTypeCreateTopic:
			if _, err := c.DirectoryService.CreateTopic(ctx, req.Title, req.Description, req.CreatorName, client.GuestID); err != nil {
				client.pushError(req.PacketID, err.Error())
			}
			// 新话题通过各连接自己的话题订阅推下去，这里不用回包

		case message.WsTypeCloseTopic:
			if client.room == nil || client.room.TopicID() != req.TopicID {
				client.pushError(req.PacketID, "join the topic before closing it")
				return
			}
			if err := client.room.CloseTopic(ctx); err != nil {
				client.pushError(req.PacketID, err.Error())
			}

		default:
			client.pushError(req.PacketID, "unknown message type")
		}
	}
}
