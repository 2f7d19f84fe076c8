package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/internal/metrics"
)

// commitOrder is the order in which dirty collections are written back.
var commitOrder = []string{
	ports.KeyUsers,
	ports.KeyCompanies,
	ports.KeyLivestock,
	ports.KeyGroups,
	ports.KeyPastures,
	ports.KeyAppointments,
	ports.KeyFeedingHistory,
	ports.KeyCurrentUser,
}

// Collections gives the services typed access to the persisted collections.
// Update runs one operation at a time across the whole store; View may run
// concurrently with other views.
type Collections struct {
	kv  ports.KVStore
	mu  sync.RWMutex
	log zerolog.Logger
	now func() time.Time
}

// NewCollections wraps kv.
func NewCollections(kv ports.KVStore, log zerolog.Logger) *Collections {
	return &Collections{kv: kv, log: log, now: time.Now}
}

// Now returns the current time in UTC.
func (c *Collections) Now() time.Time {
	return c.now().UTC()
}

// Update runs fn against a fresh Tx and, if fn succeeds, writes back every
// collection fn changed. Writes are issued one key at a time; a failure
// part-way leaves the earlier keys written.
func (c *Collections) Update(ctx context.Context, fn func(tx *Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := newTx(ctx, c.kv)
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.commit(); err != nil {
		c.log.Error().Err(err).Msg("store write failed")
		return err
	}
	return nil
}

// View runs fn against a read-only Tx.
func (c *Collections) View(ctx context.Context, fn func(tx *Tx) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return fn(newTx(ctx, c.kv))
}

// Tx caches the collections read during one operation and tracks which of
// them were replaced.
type Tx struct {
	ctx    context.Context
	kv     ports.KVStore
	loaded map[string]any
	dirty  map[string]bool
}

func newTx(ctx context.Context, kv ports.KVStore) *Tx {
	return &Tx{
		ctx:    ctx,
		kv:     kv,
		loaded: make(map[string]any),
		dirty:  make(map[string]bool),
	}
}

func load[T any](tx *Tx, key string) (T, error) {
	if v, ok := tx.loaded[key]; ok {
		return v.(T), nil
	}

	var out T
	raw, found, err := tx.kv.Read(tx.ctx, key)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", key, err)
	}
	if found && len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	tx.loaded[key] = out
	return out, nil
}

func (tx *Tx) put(key string, v any) {
	tx.loaded[key] = v
	tx.dirty[key] = true
}

func (tx *Tx) commit() error {
	for _, key := range commitOrder {
		if !tx.dirty[key] {
			continue
		}
		raw, err := json.Marshal(tx.loaded[key])
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := tx.kv.Write(tx.ctx, key, raw); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		metrics.StoreWritesTotal.WithLabelValues(key).Inc()
	}
	return nil
}

// --- partitioned helpers ---

func loadPartition[T any](tx *Tx, key, companyID string) ([]T, error) {
	m, err := load[map[string][]T](tx, key)
	if err != nil {
		return nil, err
	}
	return m[companyID], nil
}

func putPartition[T any](tx *Tx, key, companyID string, items []T) error {
	m, err := load[map[string][]T](tx, key)
	if err != nil {
		return err
	}
	if m == nil {
		m = make(map[string][]T)
	}
	if items == nil {
		items = []T{}
	}
	m[companyID] = items
	tx.put(key, m)
	return nil
}

// --- typed accessors ---

func (tx *Tx) Users() ([]domain.User, error) {
	return load[[]domain.User](tx, ports.KeyUsers)
}

func (tx *Tx) SetUsers(users []domain.User) {
	tx.put(ports.KeyUsers, users)
}

func (tx *Tx) Companies() ([]domain.Company, error) {
	return load[[]domain.Company](tx, ports.KeyCompanies)
}

func (tx *Tx) SetCompanies(companies []domain.Company) {
	tx.put(ports.KeyCompanies, companies)
}

func (tx *Tx) Animals(companyID string) ([]domain.Animal, error) {
	return loadPartition[domain.Animal](tx, ports.KeyLivestock, companyID)
}

func (tx *Tx) SetAnimals(companyID string, animals []domain.Animal) error {
	return putPartition(tx, ports.KeyLivestock, companyID, animals)
}

func (tx *Tx) Groups(companyID string) ([]domain.Group, error) {
	return loadPartition[domain.Group](tx, ports.KeyGroups, companyID)
}

func (tx *Tx) SetGroups(companyID string, groups []domain.Group) error {
	return putPartition(tx, ports.KeyGroups, companyID, groups)
}

func (tx *Tx) Pastures(companyID string) ([]domain.Pasture, error) {
	return loadPartition[domain.Pasture](tx, ports.KeyPastures, companyID)
}

func (tx *Tx) SetPastures(companyID string, pastures []domain.Pasture) error {
	return putPartition(tx, ports.KeyPastures, companyID, pastures)
}

func (tx *Tx) Appointments(companyID string) ([]domain.Appointment, error) {
	return loadPartition[domain.Appointment](tx, ports.KeyAppointments, companyID)
}

func (tx *Tx) SetAppointments(companyID string, appts []domain.Appointment) error {
	return putPartition(tx, ports.KeyAppointments, companyID, appts)
}

// AllAppointments returns every company's appointments keyed by company id.
func (tx *Tx) AllAppointments() (map[string][]domain.Appointment, error) {
	return load[map[string][]domain.Appointment](tx, ports.KeyAppointments)
}

func (tx *Tx) FeedingHistory(companyID string) (map[string][]domain.FeedingSnapshot, error) {
	m, err := load[map[string]map[string][]domain.FeedingSnapshot](tx, ports.KeyFeedingHistory)
	if err != nil {
		return nil, err
	}
	return m[companyID], nil
}

func (tx *Tx) AppendFeedingHistory(companyID string, snap domain.FeedingSnapshot) error {
	m, err := load[map[string]map[string][]domain.FeedingSnapshot](tx, ports.KeyFeedingHistory)
	if err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]map[string][]domain.FeedingSnapshot)
	}
	if m[companyID] == nil {
		m[companyID] = make(map[string][]domain.FeedingSnapshot)
	}
	m[companyID][snap.GroupID] = append(m[companyID][snap.GroupID], snap)
	tx.put(ports.KeyFeedingHistory, m)
	return nil
}

func (tx *Tx) Session() (*domain.Session, error) {
	return load[*domain.Session](tx, ports.KeyCurrentUser)
}

// SetSession persists s; nil clears the active session.
func (tx *Tx) SetSession(s *domain.Session) {
	tx.put(ports.KeyCurrentUser, s)
}
