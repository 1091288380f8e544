package proxy

import "regexp"

// DefaultDenyList returns the paths whose responses are never cached:
// the current account, vRack server interfaces and IPMI features.
func DefaultDenyList() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`^/me$`),
		regexp.MustCompile(`^/vrack/.*/dedicatedServerInterface$`),
		regexp.MustCompile(`/dedicated/server/.*/features/ipmi/?`),
	}
}

// Classifier decides whether a path takes part in caching.
// The answer is the same for every verb.
type Classifier struct {
	disabled bool
	deny     []*regexp.Regexp
}

// NewClassifier returns a classifier. A nil deny list selects DefaultDenyList.
func NewClassifier(cacheDisabled bool, deny []*regexp.Regexp) *Classifier {
	if deny == nil {
		deny = DefaultDenyList()
	}
	return &Classifier{disabled: cacheDisabled, deny: deny}
}

// ShouldCache reports whether the cache is consulted and invalidated for path.
func (c *Classifier) ShouldCache(path string) bool {
	if c.disabled {
		return false
	}
	for _, re := range c.deny {
		if re.MatchString(path) {
			return false
		}
	}
	return true
}
