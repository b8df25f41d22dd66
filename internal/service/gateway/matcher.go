package gateway

import (
	"log/slog"
	"regexp"
	"sync"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

// Matcher classifies command text against an ordered rule list.
// Compiled patterns are cached by pattern text, so re-evaluating a stable
// rule set does not recompile on every submission.
type Matcher struct {
	log *slog.Logger

	mu    sync.RWMutex
	cache map[string]*compiledPattern
}

// compiledPattern caches the compile result, including failures: a pattern
// that failed to compile once is skipped without recompiling every time.
type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// NewMatcher creates a Matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		log:   logger.With("component", "matcher"),
		cache: make(map[string]*compiledPattern),
	}
}

// Match returns the action of the first rule (in list order) whose pattern
// matches anywhere in commandText. A rule whose pattern does not compile is
// skipped; a broken rule never aborts the scan. When no rule matches, the
// default is AUTO_REJECT — the gateway fails closed.
func (m *Matcher) Match(commandText string, rules []domain.Rule) domain.RuleAction {
	for _, rule := range rules {
		re, err := m.compile(rule.Pattern)
		if err != nil {
			m.log.Warn("skipping rule with invalid pattern",
				slog.String("rule_id", rule.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if re.MatchString(commandText) {
			return rule.Action
		}
	}
	return domain.RuleActionAutoReject
}

func (m *Matcher) compile(pattern string) (*regexp.Regexp, error) {
	m.mu.RLock()
	cached, ok := m.cache[pattern]
	m.mu.RUnlock()
	if ok {
		return cached.re, cached.err
	}

	re, err := regexp.Compile(pattern)

	m.mu.Lock()
	m.cache[pattern] = &compiledPattern{re: re, err: err}
	m.mu.Unlock()

	return re, err
}
