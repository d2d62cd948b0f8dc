package cache

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// hashingKeySerializer shortens keys longer than maxLen to method::h<xxhash>.
// The method stays readable so prefix invalidation keeps working.
type hashingKeySerializer struct {
	inner  KeySerializer
	maxLen int
}

// NewHashingKeySerializer wraps inner. A nil inner uses the default serializer
// and a non-positive maxLen hashes every key that has arguments.
func NewHashingKeySerializer(inner KeySerializer, maxLen int) KeySerializer {
	if inner == nil {
		inner = NewDefaultKeySerializer()
	}
	return &hashingKeySerializer{inner: inner, maxLen: maxLen}
}

func (h *hashingKeySerializer) SerializeKey(method string, args ...any) string {
	key := h.inner.SerializeKey(method, args...)
	if len(args) == 0 || (h.maxLen > 0 && len(key) <= h.maxLen) {
		return key
	}
	return method + KeySeparator + "h" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}
