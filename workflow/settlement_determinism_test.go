package workflow

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the intended settlement semantics:
// - at-least-once delivery is safe via durable idempotency
// - per-business serialization prevents racey interleavings inside handlers
// - replayed daily settlements never double-move holding money
//
// Full DB+PubSub integration tests should be added in an environment that can run MySQL + Pub/Sub emulator.

type fakeSlotProcessor struct {
	muByBiz map[string]*sync.Mutex
	mu      sync.Mutex
	seen    map[string]bool
	calls   int

	// holding buckets, mutated only inside process
	buyerHeld  decimal.Decimal
	sellerHeld decimal.Decimal
}

func newFakeSlotProcessor(total decimal.Decimal) *fakeSlotProcessor {
	return &fakeSlotProcessor{
		muByBiz:   map[string]*sync.Mutex{},
		seen:      map[string]bool{},
		buyerHeld: total,
	}
}

func (p *fakeSlotProcessor) process(businessID, handlerName, messageID string, fn func()) {
	// Serialize per business (AcquireBusinessPostingLock).
	p.mu.Lock()
	bm := p.muByBiz[businessID]
	if bm == nil {
		bm = &sync.Mutex{}
		p.muByBiz[businessID] = bm
	}
	p.mu.Unlock()

	bm.Lock()
	defer bm.Unlock()

	// Deduplicate (IdempotencyKey).
	key := businessID + "|" + handlerName + "|" + messageID
	p.mu.Lock()
	if p.seen[key] {
		p.mu.Unlock()
		return
	}
	p.seen[key] = true
	p.mu.Unlock()

	fn()

	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

func TestDuplicateDelivery_IsProcessedOnce(t *testing.T) {
	p := newFakeSlotProcessor(decimal.NewFromInt(100000))

	const (
		biz       = "biz-1"
		handler   = "SST"
		messageID = "123"
	)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.process(biz, handler, messageID, func() {})
		}()
	}
	wg.Wait()

	if p.calls != 1 {
		t.Fatalf("expected exactly 1 processing call, got %d", p.calls)
	}
}

// Ten settlement days delivered concurrently, each several times: the
// holding must end with every daily amount moved exactly once.
func TestSettlementReplay_MovesHoldingOnce(t *testing.T) {
	total := decimal.NewFromInt(100000)
	daily := decimal.NewFromInt(10000)

	for run := 0; run < 50; run++ {
		p := newFakeSlotProcessor(total)
		var wg sync.WaitGroup

		for day := 1; day <= 10; day++ {
			messageID := "day-" + string(rune('0'+day-1))
			for replay := 0; replay < 5; replay++ {
				wg.Add(1)
				go func(msgID string) {
					defer wg.Done()
					p.process("biz-1", "SST", msgID, func() {
						p.buyerHeld = p.buyerHeld.Sub(daily)
						p.sellerHeld = p.sellerHeld.Add(daily)
					})
				}(messageID)
			}
		}
		wg.Wait()

		if p.calls != 10 {
			t.Fatalf("run=%d expected 10 unique settlements, got %d", run, p.calls)
		}
		if !p.buyerHeld.IsZero() || !p.sellerHeld.Equal(total) {
			t.Fatalf("run=%d holding drifted: buyer=%s seller=%s", run, p.buyerHeld, p.sellerHeld)
		}
	}
}

func TestProperty_DeterministicUnderConcurrency(t *testing.T) {
	for run := 0; run < 100; run++ {
		p := newFakeSlotProcessor(decimal.NewFromInt(100000))
		var wg sync.WaitGroup

		// same scenario, repeated concurrently
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p.process("biz-1", "SPU", "1", func() {})
				p.process("biz-1", "SST", "2", func() {})
				p.process("biz-1", "SPU", "1", func() {}) // duplicate
			}(i)
		}
		wg.Wait()

		if p.calls != 2 {
			t.Fatalf("run=%d expected 2 unique calls (SPU#1, SST#2), got %d", run, p.calls)
		}
	}
}
