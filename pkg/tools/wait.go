package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aikata-dev/aikata/pkg/logger"
	"github.com/aikata-dev/aikata/pkg/room"
)

// WaitTool blocks for a requested number of minutes, waking early when a
// new_message_come or finish_session event lands in the room's event log.
// Instead of polling it blocks on the log's append notification.
type WaitTool struct {
	room       *room.Room
	maxMinutes float64

	// one simulated minute; tests shrink this
	tick time.Duration

	mu   sync.Mutex
	info room.WaitingInfo
}

func NewWaitTool(rm *room.Room, maxMinutes float64) *WaitTool {
	if maxMinutes <= 0 {
		maxMinutes = 60
	}
	return &WaitTool{
		room:       rm,
		maxMinutes: maxMinutes,
		tick:       time.Minute,
	}
}

// SetTick overrides the length of one simulated minute (for tests).
func (t *WaitTool) SetTick(tick time.Duration) {
	t.tick = tick
}

func (t *WaitTool) Name() string {
	return "wait"
}

func (t *WaitTool) Description() string {
	return "指定された分数だけ待機します。ユーザーからの新着メッセージがあったときには即座に再開します。" +
		"ユーザーの入力が遅いときに必要以上にメッセージを送信しないためのツールです。" +
		"連続でwaitを発動するときはexpスケールで設定時間を長くするといい (1->2->4->8みたいにだんだん長くなる)。" +
		"EVENT HISTORYで連続してwaitが発動しているかを確認できる。" +
		"UXを高める目的以外でuserの応答を無視してwaitすることは許されない。"
}

func (t *WaitTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"minutes": "float (待機する分数)",
	}
}

func (t *WaitTool) Execute(ctx context.Context, args map[string]interface{}) *ToolResult {
	minutes, ok := floatArg(args, "minutes")
	if !ok {
		return NewToolResult("待機時間は数値で指定してください。")
	}
	if minutes < 0 {
		return NewToolResult("待機時間は0以上の値を指定してください。")
	}
	if minutes > t.maxMinutes {
		minutes = t.maxMinutes
	}

	t.room.Events.Append(room.ActionWait, fmt.Sprintf("%g分間待機開始", minutes), "")
	startIdx := t.room.Events.Len()

	logger.DebugCF("tools.wait", "wait started", map[string]interface{}{
		"room_id": t.room.ID,
		"minutes": minutes,
	})

	start := time.Now()
	deadline := time.NewTimer(time.Duration(minutes * float64(t.tick)))
	defer deadline.Stop()

	for {
		// grab the notification channel before scanning: an event landing
		// after the scan closes this channel, an event landing before it is
		// caught by the scan, so no append is ever missed
		appended := t.room.Events.Appended()

		if action, found := t.interruptingEvent(startIdx); found {
			elapsed := t.elapsedMinutes(start)
			t.recordWait(elapsed)
			return NewToolResult(fmt.Sprintf("%.1f分経過。%sイベントにより待機を終了しました。", elapsed, action))
		}

		select {
		case <-deadline.C:
			t.recordWait(minutes)
			return NewToolResult(fmt.Sprintf("%g分間の待機が完了しました。", minutes))

		case <-ctx.Done():
			elapsed := t.elapsedMinutes(start)
			t.recordWait(elapsed)
			return NewToolResult(fmt.Sprintf("%.1f分経過。セッション停止により待機を終了しました。", elapsed))

		case <-appended:
		}
	}
}

// interruptingEvent scans events appended after the wait started for one of
// the two actions that cut a wait short.
func (t *WaitTool) interruptingEvent(startIdx int) (string, bool) {
	for _, ev := range t.room.Events.EventsSince(startIdx) {
		if ev.Action == room.ActionNewMessage || ev.Action == room.ActionFinishSession {
			return ev.Action, true
		}
	}
	return "", false
}

func (t *WaitTool) elapsedMinutes(start time.Time) float64 {
	return float64(time.Since(start)) / float64(t.tick)
}

func (t *WaitTool) recordWait(elapsedMinutes float64) {
	t.mu.Lock()
	t.info.ConsecutiveWaitingDuration += elapsedMinutes
	t.info.PrevWaitingDuration = elapsedMinutes
	t.mu.Unlock()
}

// ResetWaitingInfo zeroes the counters. The loop calls this before every
// non-wait tool so only back-to-back waits accumulate.
func (t *WaitTool) ResetWaitingInfo() {
	t.mu.Lock()
	t.info = room.WaitingInfo{}
	t.mu.Unlock()
}

func (t *WaitTool) WaitingInfo() room.WaitingInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}
