package common

import (
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// ActivityLog is the write-only audit sink. Implementations must be
// best-effort: a failed write never affects the operation it trails.
type ActivityLog interface {
	Record(hospitalID uint, staffID, patientID *uint, action string)
}

// Notifier delivers a human-facing alert. Fire-and-forget from the caller's
// perspective; implementations decide how (and whether) delivery happens.
type Notifier interface {
	Send(recipient, subject, body string)
}

// Service is the allocation core: ward/bed registry, admission state machine,
// transfers, appointment assignment and shift handover. Collaborators are
// injected at construction, never reached through package globals.
type Service struct {
	db     *gorm.DB
	trail  ActivityLog
	notify Notifier
	locks  *lockRegistry
}

func NewService(db *gorm.DB, trail ActivityLog, notify Notifier) *Service {
	return &Service{
		db:     db,
		trail:  trail,
		notify: notify,
		locks:  newLockRegistry(),
	}
}

func bedKey(id uint) string {
	return fmt.Sprintf("bed:%d", id)
}

func admissionKey(id uint) string {
	return fmt.Sprintf("admission:%d", id)
}

func patientKey(id uint) string {
	return fmt.Sprintf("patient:%d", id)
}

func staffKey(id uint) string {
	return fmt.Sprintf("staff:%d", id)
}

func appointmentKey(id uint) string {
	return fmt.Sprintf("appointment:%d", id)
}

type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sync.Mutex)}
}

func (r *lockRegistry) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	return m
}

// acquire locks the given resource keys and returns the release function.
// Keys are deduplicated and locked in sorted order so operations that share
// resources always take them in the same global order.
func (r *lockRegistry) acquire(keys ...string) func() {
	seen := make(map[string]bool, len(keys))
	ks := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			ks = append(ks, k)
		}
	}
	sort.Strings(ks)
	ms := make([]*sync.Mutex, 0, len(ks))
	for _, k := range ks {
		m := r.get(k)
		m.Lock()
		ms = append(ms, m)
	}
	return func() {
		for i := len(ms) - 1; i >= 0; i-- {
			ms[i].Unlock()
		}
	}
}
