package stats

import (
	"sync"

	"github.com/akab00m/dupclean/duplib"
	statsd "github.com/smira/go-statsd"
)

// chatInfo is what observer remembers about a chat between events. Event
// stream routes all events of a chat to the same observer, so it needs no
// locking.
type chatInfo struct {
	tags map[string]string
}

func (c chatInfo) T(key string) statsd.Tag {
	return statsd.StringTag(key, c.tags[key])
}

func (c *chatInfo) Reset() {
	for k := range c.tags {
		delete(c.tags, k)
	}
}

var chatInfoPool = sync.Pool{
	New: func() interface{} {
		return &chatInfo{
			tags: make(map[string]string),
		}
	},
}

func acquireChatInfo(reason duplib.ActivationReason) *chatInfo {
	info := chatInfoPool.Get().(*chatInfo) //nolint: forcetypeassert
	info.tags[TagActivation] = reason.String()

	return info
}

func releaseChatInfo(info *chatInfo) {
	info.Reset()
	chatInfoPool.Put(info)
}
