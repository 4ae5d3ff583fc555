package service

import (
	"context"
	"qa-session-go/pkg/events"
	"qa-session-go/pkg/log"
	"sync"
	"time"
)

const (
	exchangeQueueSize = 256
	recordTimeout     = 3 * time.Second
)

// exchangeQueue 在后台把问答事件交给 recorder，回答不等待投递完成。
// 队列满时丢弃新事件。
type exchangeQueue struct {
	recorder ExchangeRecorder

	mu     sync.Mutex
	closed bool
	ch     chan events.Exchange
	done   chan struct{}
}

func newExchangeQueue(recorder ExchangeRecorder, size int) *exchangeQueue {
	q := &exchangeQueue{
		recorder: recorder,
		ch:       make(chan events.Exchange, size),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

// push 非阻塞地放入一条事件，返回是否入队。
func (q *exchangeQueue) push(ev events.Exchange) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.ch <- ev:
		return true
	default:
		log.Warnf("[ExchangeQueue] 事件队列已满，丢弃问答事件, scene=%s", ev.SceneID)
		return false
	}
}

func (q *exchangeQueue) run() {
	defer close(q.done)
	for ev := range q.ch {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := q.recorder.Record(ctx, ev); err != nil {
			log.Errorf("[ExchangeQueue] 投递问答事件失败: %v", err)
		}
		cancel()
	}
}

// close 停止接收新事件，并等待已入队的事件投递完毕。
func (q *exchangeQueue) close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()
	<-q.done
}
