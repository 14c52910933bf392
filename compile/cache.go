package compile

import (
	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

// CacheOpt configures a Cache.
type CacheOpt struct {
	// Size bounds the number of compiled writers and, separately, readers.
	// Zero means 128.
	Size int
	// WriteOpt is passed to every compiled Writer.
	WriteOpt avrokit.WriteOpt
}

// Cache memoizes compiled trees. Compiled trees are read-only, so one cached
// tree serves every goroutine.
type Cache struct {
	opt     avrokit.WriteOpt
	writers *lru.Cache[string, avrokit.Writer]
	readers *lru.Cache[readerKey, avrokit.Reader]
}

type readerKey struct {
	writer, reader string
}

// NewCache returns an empty cache.
func NewCache(opt CacheOpt) (*Cache, error) {
	size := opt.Size
	if size <= 0 {
		size = 128
	}
	writers, err := lru.New[string, avrokit.Writer](size)
	if err != nil {
		return nil, err
	}
	readers, err := lru.New[readerKey, avrokit.Reader](size)
	if err != nil {
		return nil, err
	}
	return &Cache{opt: opt.WriteOpt, writers: writers, readers: readers}, nil
}

// key identifies everything that affects compilation. The parsing canonical
// form is not enough: it drops defaults, aliases and logical types.
func key(s *schema.Schema) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Writer returns the cached Writer for s, compiling it on a miss.
func (c *Cache) Writer(s *schema.Schema) (avrokit.Writer, error) {
	k, err := key(s)
	if err != nil {
		return nil, err
	}
	if w, ok := c.writers.Get(k); ok {
		return w, nil
	}
	w, err := Writer(s, c.opt)
	if err != nil {
		return nil, err
	}
	c.writers.Add(k, w)
	return w, nil
}

// Reader returns the cached resolving Reader for (writer, reader). Schema
// mismatches are not cached.
func (c *Cache) Reader(writer, reader *schema.Schema) (avrokit.Reader, error) {
	if reader == nil {
		reader = writer
	}
	wk, err := key(writer)
	if err != nil {
		return nil, err
	}
	rk, err := key(reader)
	if err != nil {
		return nil, err
	}
	k := readerKey{writer: wk, reader: rk}
	if r, ok := c.readers.Get(k); ok {
		return r, nil
	}
	r, err := Reader(writer, reader)
	if err != nil {
		return nil, err
	}
	c.readers.Add(k, r)
	return r, nil
}

// Len reports the number of cached writers and readers.
func (c *Cache) Len() (writers, readers int) {
	return c.writers.Len(), c.readers.Len()
}
