package repository

import (
	"context"
	"sync"

	"medstock/internal/domain/medicine"
	"medstock/internal/domain/prescription"
)

// medicineHub fans committed medicine mutations out to live subscribers.
// Channels are buffered to one element with latest-value-wins delivery: a
// slow subscriber sees the newest state, never a backlog, and can never
// block a writer.
type medicineHub struct {
	mu       sync.Mutex
	nextID   int
	listSubs map[int]chan []*medicine.Medicine
	itemSubs map[int]*itemSub
}

type itemSub struct {
	medicineID uint
	ch         chan medicine.Update
}

func newMedicineHub() *medicineHub {
	return &medicineHub{
		listSubs: make(map[int]chan []*medicine.Medicine),
		itemSubs: make(map[int]*itemSub),
	}
}

// subscribeList registers a list subscriber and delivers its initial snapshot
// in one critical section. Reading the snapshot under the lock means a
// broadcast for a concurrently committed mutation cannot slip between the
// read and the delivery and then be overwritten by the older snapshot.
func (h *medicineHub) subscribeList(ctx context.Context, snapshot func() ([]*medicine.Medicine, bool)) chan []*medicine.Medicine {
	ch := make(chan []*medicine.Medicine, 1)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listSubs[id] = ch
	if ms, ok := snapshot(); ok {
		replace(ch, ms)
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.listSubs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

func (h *medicineHub) subscribeItem(ctx context.Context, medicineID uint, snapshot func() medicine.Update) chan medicine.Update {
	ch := make(chan medicine.Update, 1)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.itemSubs[id] = &itemSub{medicineID: medicineID, ch: ch}
	replace(ch, snapshot())
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.itemSubs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

func (h *medicineHub) hasListSubs() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listSubs) > 0
}

func (h *medicineHub) hasItemSubs(medicineID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.itemSubs {
		if s.medicineID == medicineID {
			return true
		}
	}
	return false
}

func (h *medicineHub) broadcastList(ms []*medicine.Medicine) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.listSubs {
		replace(ch, ms)
	}
}

func (h *medicineHub) broadcastItem(medicineID uint, u medicine.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.itemSubs {
		if s.medicineID == medicineID {
			replace(s.ch, u)
		}
	}
}

// prescriptionHub is the list-only counterpart of medicineHub for the
// prescription history screen. Same delivery contract: one-slot channels,
// latest value wins, sends and closes under the lock.
type prescriptionHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan []*prescription.Prescription
}

func newPrescriptionHub() *prescriptionHub {
	return &prescriptionHub{subs: make(map[int]chan []*prescription.Prescription)}
}

func (h *prescriptionHub) subscribe(ctx context.Context, snapshot func() ([]*prescription.Prescription, bool)) chan []*prescription.Prescription {
	ch := make(chan []*prescription.Prescription, 1)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if ps, ok := snapshot(); ok {
		replace(ch, ps)
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

func (h *prescriptionHub) hasSubs() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs) > 0
}

func (h *prescriptionHub) broadcast(ps []*prescription.Prescription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		replace(ch, ps)
	}
}

// replace performs latest-value-wins delivery on a one-slot channel.
func replace[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
