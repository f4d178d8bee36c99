package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/request"
)

// lruEntry is a doubly-linked list node for the LRU cache.
type lruEntry struct {
	key      uint64
	response *pdp.Response
	expires  time.Time
	prev     *lruEntry
	next     *lruEntry
}

// ResultCache provides bounded LRU caching for decision responses.
// Decisions are pure functions of (corpus, request), but requests without
// their own environment clock attributes see the synthesized current time,
// so entries carry a TTL. Thread-safe with a mutex: both Get and Put mutate
// LRU order.
type ResultCache struct {
	mu      sync.Mutex
	entries map[uint64]*lruEntry
	head    *lruEntry // most recently used
	tail    *lruEntry // least recently used
	maxSize int
	ttl     time.Duration
}

// NewResultCache creates an LRU cache with the given capacity and entry
// TTL.
func NewResultCache(maxSize int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[uint64]*lruEntry, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get retrieves a cached response. Expired entries miss and are evicted.
func (c *ResultCache) Get(key uint64) (*pdp.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		c.removeLocked(e)
		return nil, false
	}
	c.moveToHeadLocked(e)
	return e.response, true
}

// Put stores a response. At capacity the least recently used entry is
// evicted.
func (c *ResultCache) Put(key uint64, response *pdp.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.response = response
		e.expires = expires
		c.moveToHeadLocked(e)
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evictTailLocked()
	}
	e := &lruEntry{key: key, response: response, expires: expires}
	c.entries[key] = e
	c.pushHeadLocked(e)
}

// Size returns the current entry count.
func (c *ResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) moveToHeadLocked(e *lruEntry) {
	if c.head == e {
		return
	}
	c.unlinkLocked(e)
	c.pushHeadLocked(e)
}

func (c *ResultCache) pushHeadLocked(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ResultCache) unlinkLocked(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if c.head == e {
		c.head = e.next
	}
	if c.tail == e {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *ResultCache) removeLocked(e *lruEntry) {
	c.unlinkLocked(e)
	delete(c.entries, e.key)
}

func (c *ResultCache) evictTailLocked() {
	if c.tail != nil {
		c.removeLocked(c.tail)
	}
}

// RequestKey fingerprints a request for caching and audit correlation. The
// canonical form sorts categories, attributes, and values so equivalent
// requests collide.
func RequestKey(req *request.Request) uint64 {
	var sb strings.Builder
	cats := make([]string, 0, len(req.Categories))
	for i := range req.Categories {
		cats = append(cats, canonicalCategory(&req.Categories[i]))
	}
	sort.Strings(cats)
	for _, c := range cats {
		sb.WriteString(c)
		sb.WriteByte('\n')
	}
	return xxhash.Sum64String(sb.String())
}

func canonicalCategory(cat *request.Category) string {
	var sb strings.Builder
	sb.WriteString(cat.CategoryID)
	attrs := make([]string, 0, len(cat.Attributes))
	for _, a := range cat.Attributes {
		var ab strings.Builder
		ab.WriteString(a.AttributeID)
		ab.WriteByte('|')
		ab.WriteString(a.Issuer)
		values := make([]string, 0, len(a.Values))
		for _, v := range a.Values {
			values = append(values, v.DataType+"="+v.Value)
		}
		sort.Strings(values)
		for _, v := range values {
			ab.WriteByte('|')
			ab.WriteString(v)
		}
		attrs = append(attrs, ab.String())
	}
	sort.Strings(attrs)
	for _, a := range attrs {
		sb.WriteByte(';')
		sb.WriteString(a)
	}
	if cat.Content != nil {
		sb.WriteString(";content")
		canonicalContent(&sb, cat.Content)
	}
	return sb.String()
}

func canonicalContent(sb *strings.Builder, n *request.ContentNode) {
	sb.WriteByte('<')
	sb.WriteString(n.Name)
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(n.Attributes[k])
	}
	sb.WriteByte('>')
	sb.WriteString(n.Text)
	for _, child := range n.Children {
		canonicalContent(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteByte('>')
}
