package session_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/edgard/autoreply/internal/session"
)

func TestEligible(t *testing.T) {
	t.Parallel()

	type eligibleTestCase struct {
		name       string
		lastSeen   string
		skipSystem bool
		msg        *session.Message
		expected   bool
	}

	testGroups := map[string][]eligibleTestCase{
		"Ordering": {
			{name: "first message ever", msg: &session.Message{ID: "100", AuthorID: "u1"}, expected: true},
			{name: "newer id", lastSeen: "100", msg: &session.Message{ID: "101", AuthorID: "u1"}, expected: true},
			{name: "same id", lastSeen: "100", msg: &session.Message{ID: "100", AuthorID: "u1"}, expected: false},
			{name: "older id", lastSeen: "100", msg: &session.Message{ID: "99", AuthorID: "u1"}, expected: false},
			{name: "numeric not lexical", lastSeen: "99", msg: &session.Message{ID: "100", AuthorID: "u1"}, expected: true},
			{name: "snowflake", lastSeen: "1213141516171819200", msg: &session.Message{ID: "1213141516171819201", AuthorID: "u1"}, expected: true},
		},
		"Author": {
			{name: "own message", msg: &session.Message{ID: "100", AuthorID: "bot"}, expected: false},
			{name: "own newer message", lastSeen: "50", msg: &session.Message{ID: "100", AuthorID: "bot"}, expected: false},
		},
		"System messages": {
			{name: "join skipped", skipSystem: true, msg: &session.Message{ID: "100", AuthorID: "u1", System: true, Type: 7}, expected: false},
			{name: "join allowed when not skipping", msg: &session.Message{ID: "100", AuthorID: "u1", System: true, Type: 7}, expected: true},
		},
		"Malformed": {
			{name: "nil message", msg: nil, expected: false},
			{name: "non-numeric id", msg: &session.Message{ID: "abc", AuthorID: "u1"}, expected: false},
			{name: "empty id", msg: &session.Message{ID: "", AuthorID: "u1"}, expected: false},
		},
	}

	for groupName, cases := range testGroups {
		t.Run(groupName, func(t *testing.T) {
			t.Parallel()
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					t.Parallel()
					s := session.New(tc.skipSystem)
					s.SetBotUserID("bot")
					if tc.lastSeen != "" && !s.Advance(tc.lastSeen) {
						t.Fatalf("Advance(%q) failed", tc.lastSeen)
					}
					if got := s.Eligible(tc.msg); got != tc.expected {
						t.Errorf("Eligible() = %v, want %v", got, tc.expected)
					}
				})
			}
		})
	}
}

func TestAdvance_OnlyMovesForward(t *testing.T) {
	t.Parallel()

	s := session.New(false)
	if _, ok := s.LastSeenID(); ok {
		t.Fatal("new state should have no last seen id")
	}

	if !s.Advance("100") {
		t.Fatal("Advance(100) on empty state should succeed")
	}
	if s.Advance("100") {
		t.Error("Advance to the same id should be rejected")
	}
	if s.Advance("42") {
		t.Error("Advance to an older id should be rejected")
	}
	if s.Advance("x") {
		t.Error("Advance to a non-numeric id should be rejected")
	}
	if got, _ := s.LastSeenID(); got != "100" {
		t.Errorf("LastSeenID() = %q, want 100", got)
	}
	if !s.Advance("101") {
		t.Error("Advance(101) should succeed")
	}
}

// Random increasing streams mixed with replays: a replayed or older id is never
// eligible, and neither is anything the bot wrote.
func TestEligible_NeverReprocesses(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	s := session.New(true)
	s.SetBotUserID("bot")

	var processed []uint64
	next := uint64(1000)
	for i := 0; i < 2000; i++ {
		var id uint64
		switch r.IntN(3) {
		case 0:
			if len(processed) > 0 {
				id = processed[r.IntN(len(processed))]
				break
			}
			fallthrough
		default:
			next += uint64(r.IntN(5) + 1)
			id = next
		}
		author := "user" + strconv.Itoa(r.IntN(3))
		if r.IntN(4) == 0 {
			author = "bot"
		}

		msg := &session.Message{ID: strconv.FormatUint(id, 10), AuthorID: author}
		if !s.Eligible(msg) {
			continue
		}
		if author == "bot" {
			t.Fatalf("bot-authored message %d treated as eligible", id)
		}
		if n := len(processed); n > 0 && id <= processed[n-1] {
			t.Fatalf("id %d reprocessed after %d", id, processed[n-1])
		}
		processed = append(processed, id)
		s.Advance(msg.ID)
	}
	if len(processed) == 0 {
		t.Fatal("no message was ever processed")
	}
}

func TestReplyTracking(t *testing.T) {
	t.Parallel()

	s := session.New(false)
	if s.IsDuplicate("") {
		t.Error("empty state should not report duplicates")
	}
	if _, ok := s.LastReply(); ok {
		t.Error("new state should have no last reply")
	}

	s.AcceptReply("yo chill bro")
	if !s.IsDuplicate("yo chill bro") {
		t.Error("identical text should be a duplicate")
	}
	if s.IsDuplicate("yo chill sis") {
		t.Error("different text should not be a duplicate")
	}
	if got, ok := s.LastReply(); !ok || got != "yo chill bro" {
		t.Errorf("LastReply() = %q, %v", got, ok)
	}
}
