package cons

// WS 下行事件类型（event）
const (
	EventTopicsSnapshot   = "topics.snapshot"   // 话题列表全量快照
	EventMessagesSnapshot = "messages.snapshot" // 当前房间消息全量快照
	EventJoined           = "room.joined"       // join 成功确认
	EventLeft             = "room.left"         // leave 成功确认
	EventError            = "error"             // 操作失败
)
