package tools

import (
	"context"

	"github.com/aikata-dev/aikata/pkg/room"
)

// ReplyMessageTool sends a text message to the user and records it as an
// assistant chat turn.
type ReplyMessageTool struct {
	room *room.Room
	send SendFunc
}

func NewReplyMessageTool(rm *room.Room, send SendFunc) *ReplyMessageTool {
	return &ReplyMessageTool{room: rm, send: send}
}

func (t *ReplyMessageTool) Name() string {
	return "reply_message"
}

func (t *ReplyMessageTool) Description() string {
	return "ユーザーに直接メッセージを送信します。目的に沿ったメッセージを送信してください。" +
		"メッセージは複数回のインタラクションが時系列にわたり継続していることを意識してください。" +
		"ユーザーの入力が遅いときには何度もメッセージを送信することはフラストレーションを高めるので積極的にwaitを使用してください。" +
		"例えば、2回以上連続して同じ内容をあなたから積極的に送ることはありえません。"
}

func (t *ReplyMessageTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"message": "string (ユーザーに送信するメッセージの内容)",
	}
}

func (t *ReplyMessageTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	message := stringArg(args, "message")
	if message == "" {
		return ErrorResult("Error: message is required.")
	}

	err := sendEnvelope(t.send, "message", t.room.ID, t.room.UserID, map[string]interface{}{
		"message": message,
	})
	if err != nil {
		return ErrorResult("Error: " + err.Error())
	}

	t.room.Messages.Add(message, room.SenderAssistant)
	return NewToolResult(message)
}

// ReplyMessageWithStampTool sends a sticker. Only index 0, the peek stamp,
// exists in the current catalogue.
type ReplyMessageWithStampTool struct {
	room *room.Room
	send SendFunc
}

func NewReplyMessageWithStampTool(rm *room.Room, send SendFunc) *ReplyMessageWithStampTool {
	return &ReplyMessageWithStampTool{room: rm, send: send}
}

func (t *ReplyMessageWithStampTool) Name() string {
	return "reply_message_with_stamp"
}

func (t *ReplyMessageWithStampTool) Description() string {
	return "Send a stamp to the user. Currently only index 0 (peek stamp) is available. " +
		"Use this when waiting for a response instead of verbal prompting. " +
		"waitがしばらく長く続いた場合は、0のstampを送信するとよい。"
}

func (t *ReplyMessageWithStampTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"index": "int (スタンプのインデックス, 0のみ有効)",
	}
}

func (t *ReplyMessageWithStampTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	index, ok := floatArg(args, "index")
	if !ok || index != 0 {
		return NewToolResult("Invalid stamp index. Only 0 (peek stamp) is available.")
	}

	err := sendEnvelope(t.send, "stamp", t.room.ID, t.room.UserID, map[string]interface{}{
		"index": 0,
		"name":  "peek",
	})
	if err != nil {
		return ErrorResult("Error: " + err.Error())
	}

	t.room.Messages.Add("STAMP:0", room.SenderAssistant)
	return NewToolResult("Peek stamp sent")
}
