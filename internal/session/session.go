// Package session holds the process-lifetime state of the auto-reply loop
// and the channel message model it reasons about.
package session

import (
	"strconv"
	"strings"
)

// Message is the most recent message observed in the watched channel.
type Message struct {
	ID       string
	AuthorID string
	Content  string
	// Type is the platform type tag, kept for logging.
	Type int
	// System marks platform-generated messages such as member joins.
	System bool
}

// State is the single mutable record the loop carries between cycles.
// It is owned by the loop goroutine and is not safe for concurrent use.
type State struct {
	lastSeenID    uint64
	hasLastSeen   bool
	botUserID     string
	lastReply     string
	hasLastReply  bool
	skipSystemMsg bool
}

// New returns an empty State. When skipSystem is set, system messages are never eligible.
func New(skipSystem bool) *State {
	return &State{skipSystemMsg: skipSystem}
}

// SetBotUserID records the bot's own account id, resolved once at startup.
func (s *State) SetBotUserID(id string) {
	s.botUserID = strings.TrimSpace(id)
}

// BotUserID returns the bot's own account id.
func (s *State) BotUserID() string {
	return s.botUserID
}

// LastSeenID returns the last processed message id and whether one exists.
func (s *State) LastSeenID() (string, bool) {
	if !s.hasLastSeen {
		return "", false
	}
	return strconv.FormatUint(s.lastSeenID, 10), true
}

// LastReply returns the last accepted generated reply and whether one exists.
func (s *State) LastReply() (string, bool) {
	return s.lastReply, s.hasLastReply
}

// AcceptReply stores text as the last accepted reply.
func (s *State) AcceptReply(text string) {
	s.lastReply = text
	s.hasLastReply = true
}

// IsDuplicate reports whether text equals the last accepted reply.
func (s *State) IsDuplicate(text string) bool {
	return s.hasLastReply && s.lastReply == text
}

// Eligible reports whether msg should trigger a reply: its id must be newer than the
// last processed one, it must not be authored by the bot, and, when configured,
// it must not be a system message. Messages with non-numeric ids are never eligible.
func (s *State) Eligible(msg *Message) bool {
	if msg == nil {
		return false
	}
	id, ok := parseID(msg.ID)
	if !ok {
		return false
	}
	if s.hasLastSeen && id <= s.lastSeenID {
		return false
	}
	if msg.AuthorID == s.botUserID {
		return false
	}
	if s.skipSystemMsg && msg.System {
		return false
	}
	return true
}

// Advance moves the last-seen id forward to id. It reports false, leaving the
// state untouched, when id is not numeric or not strictly greater than the current one.
func (s *State) Advance(id string) bool {
	n, ok := parseID(id)
	if !ok {
		return false
	}
	if s.hasLastSeen && n <= s.lastSeenID {
		return false
	}
	s.lastSeenID = n
	s.hasLastSeen = true
	return true
}

func parseID(id string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
