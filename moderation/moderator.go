// Package moderation implements the message acceptance gate applied by
// the router before any broadcast. Policy specifics (length cap, banned
// words, sender blocklist, duplicate window) are configuration data; the
// gate itself never mutates chat state.
package moderation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Policy carries the configurable limits of the gate.
type Policy struct {
	MaxLength       int
	BlockedSenders  []string
	DuplicateWindow time.Duration // zero disables duplicate suppression
}

// Rejection is the verdict returned for refused messages. The router
// forwards Reason verbatim to the caller.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

type lastMessage struct {
	text string
	at   time.Time
}

// Moderator checks candidate messages against the policy and a normalized
// banned-word automaton. Leet speak and punctuation noise are folded away
// before matching, so "b.4.d" still hits "bad".
type Moderator struct {
	matcher *goahocorasick.Machine
	policy  Policy
	blocked map[string]struct{}
	log     *slog.Logger

	mu   sync.Mutex
	seen map[string]lastMessage
}

// NewModerator initializes the Aho-Corasick automaton with a normalized
// version of the provided banned words list.
func NewModerator(bannedWords []string, policy Policy, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(bannedWords))
	for _, word := range bannedWords {
		if p := normalizeRunes([]rune(word)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}

	blocked := make(map[string]struct{}, len(policy.BlockedSenders))
	for _, sender := range policy.BlockedSenders {
		blocked[sender] = struct{}{}
	}

	return &Moderator{
		matcher: m,
		policy:  policy,
		blocked: blocked,
		log:     log,
		seen:    make(map[string]lastMessage),
	}, nil
}

// Check applies the policy pipeline in order: empty, length, banned
// words, sender blocklist, duplicate suppression. A nil return accepts.
func (m *Moderator) Check(_ context.Context, sender, text string) error {
	if strings.TrimSpace(text) == "" {
		return &Rejection{Reason: "message is empty"}
	}
	if m.policy.MaxLength > 0 && len([]rune(text)) > m.policy.MaxLength {
		return m.reject(sender, text, "message is too long")
	}
	if words := m.findBanned(text); len(words) > 0 {
		return m.reject(sender, text, "message contains forbidden words")
	}
	if _, ok := m.blocked[sender]; ok {
		return m.reject(sender, text, "sender is not allowed to post")
	}
	if m.isDuplicate(sender, text) {
		return m.reject(sender, text, "duplicate message")
	}
	return nil
}

func (m *Moderator) reject(sender, text, reason string) error {
	info := whatlanggo.Detect(text)
	m.log.Warn("Message refused",
		"sender", sender,
		"reason", reason,
		"lang", info.Lang.Iso6391())
	return &Rejection{Reason: reason}
}

// findBanned returns the banned words matched inside the normalized text.
func (m *Moderator) findBanned(text string) []string {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return nil
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	return lo.Map(spans, func(span *goahocorasick.Term, _ int) string {
		return string(span.Word)
	})
}

// isDuplicate remembers the sender's previous message and refuses an
// identical repeat inside the configured window. The cache is internal to
// the gate; no chat state is touched.
func (m *Moderator) isDuplicate(sender, text string) bool {
	if m.policy.DuplicateWindow <= 0 {
		return false
	}

	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.seen[sender]
	m.seen[sender] = lastMessage{text: text, at: now}
	return ok && prev.text == text && now.Sub(prev.at) < m.policy.DuplicateWindow
}

// normalizeRunes applies simplification and noise removal to a slice of runes.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common Leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
