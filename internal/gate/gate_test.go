package gate

import (
	"errors"
	"testing"
	"time"
)

const (
	owner    = int64(100)
	stranger = int64(200)
	chat     = int64(-500)
)

var formPrompts = []string{"Host username?", "Cohost username?", "Description?"}

func TestClaimByOwner(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	id := g.Open(owner, chat, "shift", formPrompts)

	first, err := g.Claim(id, owner)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if first != formPrompts[0] {
		t.Fatalf("first prompt = %q", first)
	}
}

func TestForeignClaimRejectedWithoutStateChange(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	id := g.Open(owner, chat, "shift", formPrompts)

	if _, err := g.Claim(id, stranger); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign claim err = %v, want ErrNotOwner", err)
	}

	// The handle must still be claimable by its owner.
	if _, err := g.Claim(id, owner); err != nil {
		t.Fatalf("owner claim after foreign attempt: %v", err)
	}
}

func TestClaimIsSingleUse(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	id := g.Open(owner, chat, "shift", formPrompts)

	if _, err := g.Claim(id, owner); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := g.Claim(id, owner); err == nil {
		t.Fatal("second claim must fail")
	}
}

func TestClaimUnknownHandle(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	if _, err := g.Claim("nope", owner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClaimExpired(t *testing.T) {
	t.Parallel()
	g := New(time.Millisecond)
	id := g.Open(owner, chat, "shift", formPrompts)
	time.Sleep(5 * time.Millisecond)

	if _, err := g.Claim(id, owner); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	if n := g.Pending(); n != 0 {
		t.Fatalf("pending = %d, want 0 after expired claim", n)
	}
}

func TestFeedWalksPromptsAndCompletes(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	id := g.Open(owner, chat, "training", formPrompts)
	if _, err := g.Claim(id, owner); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	inputs := []string{"hostA", "-", "weekly run"}
	for i, in := range inputs {
		next, meta, answers, done, handled := g.Feed(chat, owner, in)
		if !handled {
			t.Fatalf("answer %d not handled", i)
		}
		last := i == len(inputs)-1
		if done != last {
			t.Fatalf("answer %d done = %v", i, done)
		}
		if !last {
			if next != formPrompts[i+1] {
				t.Fatalf("answer %d next = %q, want %q", i, next, formPrompts[i+1])
			}
			continue
		}
		if meta != "training" {
			t.Fatalf("meta = %q", meta)
		}
		if len(answers) != len(inputs) || answers[0] != "hostA" || answers[2] != "weekly run" {
			t.Fatalf("answers = %v", answers)
		}
	}

	// Consumed on completion: further text is no longer routed to the form.
	if _, _, _, _, handled := g.Feed(chat, owner, "extra"); handled {
		t.Fatal("completed form must not take more input")
	}
	if n := g.Pending(); n != 0 {
		t.Fatalf("pending = %d, want 0", n)
	}
}

func TestFeedIgnoresUsersWithoutActiveForm(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	id := g.Open(owner, chat, "shift", formPrompts)
	if _, err := g.Claim(id, owner); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	if _, _, _, _, handled := g.Feed(chat, stranger, "hello"); handled {
		t.Fatal("text from another user must pass through unhandled")
	}
	if _, _, _, _, handled := g.Feed(chat+1, owner, "hello"); handled {
		t.Fatal("text in another chat must pass through unhandled")
	}
}

func TestFeedRefreshesExpiry(t *testing.T) {
	t.Parallel()
	g := New(50 * time.Millisecond)
	id := g.Open(owner, chat, "shift", formPrompts)
	if _, err := g.Claim(id, owner); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	// Keep answering within the TTL; each answer pushes expiry out.
	for i := 0; i < 2; i++ {
		time.Sleep(30 * time.Millisecond)
		if _, _, _, _, handled := g.Feed(chat, owner, "answer"); !handled {
			t.Fatalf("answer %d dropped despite per-answer TTL refresh", i)
		}
	}
}

func TestAbortReleasesHandle(t *testing.T) {
	t.Parallel()
	g := New(time.Minute)
	id := g.Open(owner, chat, "shift", formPrompts)
	if _, err := g.Claim(id, owner); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	g.Abort(id)
	if _, _, _, _, handled := g.Feed(chat, owner, "text"); handled {
		t.Fatal("aborted form must not take input")
	}
	if n := g.Pending(); n != 0 {
		t.Fatalf("pending = %d, want 0", n)
	}

	g.Abort("unknown") // no-op
}

func TestSweepDropsOnlyExpired(t *testing.T) {
	t.Parallel()
	g := New(30 * time.Millisecond)
	old := g.Open(owner, chat, "shift", formPrompts)
	time.Sleep(60 * time.Millisecond)
	fresh := g.Open(owner, chat+1, "shift", formPrompts)

	if n := g.Sweep(); n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}
	if _, err := g.Claim(old, owner); err == nil {
		t.Fatal("expired handle must be gone")
	}
	if _, err := g.Claim(fresh, owner); err != nil {
		t.Fatalf("fresh handle must survive sweep: %v", err)
	}
}
