package dispense

import (
	"testing"

	"medbox-fw/internal/protocol"
)

func TestMailboxOfferAndDrain(t *testing.T) {
	mb := NewMailbox(2)
	if !mb.Offer([]protocol.Request{{MagazineID: 1, Amount: 2}}) {
		t.Fatal("expected room in a fresh mailbox")
	}

	q := NewQueue()
	Drain(mb, q, 100, nil)

	if q.Pending(Magazine1) != 2 {
		t.Fatalf("expected 2 pending, got %d", q.Pending(Magazine1))
	}
}

func TestMailboxDrainClampsAmount(t *testing.T) {
	mb := NewMailbox(1)
	mb.Offer([]protocol.Request{{MagazineID: 1, Amount: 500}})

	q := NewQueue()
	Drain(mb, q, 100, nil)

	if q.Pending(Magazine1) != 100 {
		t.Fatalf("expected amount clamped to 100, got %d", q.Pending(Magazine1))
	}
}

func TestMailboxDrainDropsUnknownMagazine(t *testing.T) {
	mb := NewMailbox(1)
	mb.Offer([]protocol.Request{
		{MagazineID: 9, Amount: 1},
		{MagazineID: 1, Amount: 3},
	})

	q := NewQueue()
	Drain(mb, q, 100, nil)

	if q.Pending(Magazine1) != 3 {
		t.Fatalf("expected only the known magazine enqueued, got %d", q.Pending(Magazine1))
	}
	if !q.Empty() && q.Pending(Magazine2) != 0 {
		t.Fatal("expected magazine 2 untouched")
	}
}

func TestMailboxOfferFailsWhenFull(t *testing.T) {
	mb := NewMailbox(1)
	mb.Offer([]protocol.Request{{MagazineID: 1, Amount: 1}})
	if mb.Offer([]protocol.Request{{MagazineID: 1, Amount: 1}}) {
		t.Fatal("expected the second offer to fail on a full mailbox")
	}
}
