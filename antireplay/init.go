package antireplay

import "encoding/binary"

const (
	DefaultStableBloomFilterMaxSize   = 1024 * 1024 // 1MiB
	DefaultStableBloomFilterErrorRate = 0.001

	messageKeySize = 16
)

// Cache answers if some key was seen before. Each call remembers the key.
type Cache interface {
	SeenBefore(key []byte) bool
}

// MessageKey returns a cache key for a message in a chat.
func MessageKey(chatID int64, messageID int) []byte {
	key := make([]byte, messageKeySize)

	binary.LittleEndian.PutUint64(key[:8], uint64(chatID))
	binary.LittleEndian.PutUint64(key[8:], uint64(messageID))

	return key
}
