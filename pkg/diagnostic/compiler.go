package diagnostic

import (
	"container/list"
	"fmt"
	"regexp"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the default number of compiled expressions retained.
// Compiled matchers are cheap to regenerate, so correctness never depends
// on retention; the bound only caps memory.
const DefaultCacheSize = 256

// SyntaxError reports that a matcher's regular expression failed to
// compile. It is attributable to the one matcher so callers can skip it
// without discarding the rest of the pattern set.
type SyntaxError struct {
	// Expr is the expression source as written in the pattern definition.
	Expr string
	// Err is the underlying compile error.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid matcher expression %q: %v", e.Expr, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Compiler compiles matcher expressions and caches the compiled form keyed
// by (source, flags). Each distinct key is compiled at most once even under
// concurrent first use, and the compiled form is shared and never mutated.
//
// A Compiler is an explicitly owned component: construct one per engine (or
// share one across engines) rather than relying on process-wide state, so
// tests can run against isolated instances.
type Compiler struct {
	log logrus.FieldLogger

	group singleflight.Group

	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front is most recently used
	maxEntries int
}

type cacheEntry struct {
	key string
	re  *regexp.Regexp
}

// NewCompiler creates a compiler with a bounded LRU cache. A maxEntries of
// zero or less falls back to DefaultCacheSize.
func NewCompiler(log logrus.FieldLogger, maxEntries int) *Compiler {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}

	return &Compiler{
		log:        log.WithField("component", "pattern-compiler"),
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Compile returns the compiled form of a matcher, reusing a cached
// compilation when one exists. Invalid syntax returns a *SyntaxError.
func (c *Compiler) Compile(m Matcher) (*regexp.Regexp, error) {
	key := m.expr()

	if re, ok := c.lookup(key); ok {
		return re, nil
	}

	// Single-flight per key: concurrent first users share one compile and
	// all observe the same fully-built object.
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if re, ok := c.lookup(key); ok {
			return re, nil
		}

		re, compileErr := regexp.Compile(key)
		if compileErr != nil {
			return nil, &SyntaxError{Expr: m.Regex, Err: compileErr}
		}

		c.store(key, re)

		return re, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*regexp.Regexp), nil
}

// Len returns the number of cached compiled expressions.
func (c *Compiler) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Compiler) lookup(key string) (*regexp.Regexp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	c.order.MoveToFront(el)

	return el.Value.(*cacheEntry).re, true
}

func (c *Compiler) store(key string, re *regexp.Regexp) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, re: re})

	for len(c.entries) > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}

		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)

		c.log.WithField("expr", oldest.Value.(*cacheEntry).key).Debug("evicted compiled expression")
	}
}
