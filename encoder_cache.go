package pbpe

import (
	"container/list"
	"hash/fnv"
	"sync"
)

// cacheEntry is one cached word -> token-ID-sequence mapping.
type cacheEntry struct {
	key   string
	value []int
}

// lruShard is a single independently-locked LRU shard, adapted from the
// teacher's BPE result cache: same eviction policy, generalized to be one
// of many shards rather than the whole cache.
type lruShard struct {
	mu       sync.Mutex
	capacity int // 0 means unlimited
	items    map[string]*list.Element
	order    *list.List
}

func newLRUShard(capacity int) *lruShard {
	return &lruShard{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (s *lruShard) get(key string) ([]int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

func (s *lruShard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.order.Init()
}

func (s *lruShard) put(key string, value []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	elem := s.order.PushFront(&cacheEntry{key: key, value: value})
	s.items[key] = elem
	if s.capacity > 0 && s.order.Len() > s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// shardedCache is the word -> token-ID-sequence cache guarding the
// Encoder's hot path (§4.5). Splitting into independently-locked shards
// keyed by FNV-1a keeps concurrent readers from contending on one lock;
// writes are best-effort racing writers may both insert, and since the
// model is immutable after training, both results are equally correct.
type shardedCache struct {
	shards []*lruShard
}

func newShardedCache(shardCount, capacityPerShard int) *shardedCache {
	if shardCount <= 0 {
		shardCount = 1
	}
	c := &shardedCache{shards: make([]*lruShard, shardCount)}
	for i := range c.shards {
		c.shards[i] = newLRUShard(capacityPerShard)
	}
	return c
}

func (c *shardedCache) shardFor(key string) *lruShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

func (c *shardedCache) get(key string) ([]int, bool) {
	return c.shardFor(key).get(key)
}

func (c *shardedCache) put(key string, value []int) {
	c.shardFor(key).put(key, value)
}

func (c *shardedCache) clear() {
	for _, s := range c.shards {
		s.clear()
	}
}
