package converter

import (
	"time"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// regexCache keeps compiled replace patterns keyed by pattern and flags.
type regexCache struct {
	cache   *lru.Cache[string, *regexp2.Regexp]
	timeout time.Duration
}

func newRegexCache(size int, timeout time.Duration) *regexCache {
	rc := &regexCache{timeout: timeout}
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		rc.cache, _ = lru.New[string, *regexp2.Regexp](size)
	}
	return rc
}

// compile returns the compiled pattern, using the cache when enabled.
func (rc *regexCache) compile(pattern string, ignoreCase bool) (*regexp2.Regexp, error) {
	key := "s:" + pattern
	opts := regexp2.None
	if ignoreCase {
		key = "i:" + pattern
		opts = regexp2.IgnoreCase
	}

	if rc.cache != nil {
		if re, ok := rc.cache.Get(key); ok {
			return re, nil
		}
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	if rc.timeout > 0 {
		re.MatchTimeout = rc.timeout
	}

	if rc.cache != nil {
		rc.cache.Add(key, re)
	}
	return re, nil
}

// size reports the number of cached patterns.
func (rc *regexCache) size() int {
	if rc.cache == nil {
		return 0
	}
	return rc.cache.Len()
}
