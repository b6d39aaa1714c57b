package bot

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/OneOfOne/xxhash"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dispatcher routes updates onto shards by chat id. Each shard is a single
// goroutine, so updates of the same chat are handled one by one in order
// of arrival while different chats are handled in parallel.
type dispatcher struct {
	ctx       context.Context
	shards    []chan tgbotapi.Update
	handler   func(context.Context, tgbotapi.Update)
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Dispatch blocks if a shard is full. It returns false if the dispatcher
// is stopped.
func (d *dispatcher) Dispatch(update tgbotapi.Update) bool {
	if d.ctx.Err() != nil {
		return false
	}

	shard := d.shards[d.shardOf(updateChatID(update))]

	select {
	case <-d.ctx.Done():
		return false
	case shard <- update:
		return true
	}
}

// Stop waits until all queued updates are processed.
func (d *dispatcher) Stop() {
	d.closeOnce.Do(func() {
		for _, shard := range d.shards {
			close(shard)
		}
	})

	d.wg.Wait()
}

func (d *dispatcher) shardOf(chatID int64) int {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(chatID))

	return int(xxhash.Checksum32(buf[:]) % uint32(len(d.shards)))
}

func (d *dispatcher) run(shard <-chan tgbotapi.Update) {
	defer d.wg.Done()

	for update := range shard {
		d.handler(d.ctx, update)
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.ChannelPost != nil && update.ChannelPost.Chat != nil:
		return update.ChannelPost.Chat.ID
	case update.MyChatMember != nil:
		return update.MyChatMember.Chat.ID
	}

	return 0
}

func newDispatcher(ctx context.Context, shards int,
	handler func(context.Context, tgbotapi.Update),
) *dispatcher {
	d := &dispatcher{
		ctx:     ctx,
		shards:  make([]chan tgbotapi.Update, shards),
		handler: handler,
	}

	for i := range d.shards {
		d.shards[i] = make(chan tgbotapi.Update, shardBufferSize)
		d.wg.Add(1)

		go d.run(d.shards[i])
	}

	return d
}
