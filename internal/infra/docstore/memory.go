package docstore

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"sync"
	"time"
)

// memoryBackend keeps documents in process. Commit validates the read set and
// applies the write set under one lock, which gives the same first-committer-wins
// behaviour as the postgres backend. Versions come from one counter that never
// goes back, so a removed and recreated document cannot reuse an old version.
type memoryBackend struct {
	mu   sync.RWMutex
	docs map[docKey]document
	seq  int64
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{docs: make(map[docKey]document)}
}

func (m *memoryBackend) begin(_ context.Context) (session, error) {
	return &memorySession{
		m:      m,
		reads:  make(map[docKey]int64),
		writes: make(map[docKey][]byte),
	}, nil
}

func (m *memoryBackend) get(_ context.Context, coll Collection, id string) (document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[docKey{coll, id}]
	if !ok {
		return document{}, false, nil
	}
	return d.clone(), true, nil
}

type bookingIndex struct {
	CustomerID  string `json:"customerId"`
	Status      string `json:"status"`
	ExpiresAtMs int64  `json:"expiresAtMs"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

type indexedDoc struct {
	doc document
	idx bookingIndex
}

func (m *memoryBackend) scanBookings(match func(bookingIndex) bool) ([]indexedDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []indexedDoc
	for key, d := range m.docs {
		if key.coll != Bookings {
			continue
		}
		var idx bookingIndex
		if err := json.Unmarshal(d.body, &idx); err != nil {
			return nil, err
		}
		if match(idx) {
			out = append(out, indexedDoc{doc: d.clone(), idx: idx})
		}
	}
	return out, nil
}

func (m *memoryBackend) bookingsByCustomer(_ context.Context, customerID string, limit int) ([]document, error) {
	found, err := m.scanBookings(func(idx bookingIndex) bool { return idx.CustomerID == customerID })
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].idx.CreatedAtMs != found[j].idx.CreatedAtMs {
			return found[i].idx.CreatedAtMs > found[j].idx.CreatedAtMs
		}
		return found[i].doc.id < found[j].doc.id
	})
	return limitDocs(found, limit), nil
}

func (m *memoryBackend) expiredPending(_ context.Context, before time.Time, limit int) ([]document, error) {
	cutoff := before.UnixMilli()
	found, err := m.scanBookings(func(idx bookingIndex) bool {
		return idx.Status == "PENDING" && idx.ExpiresAtMs < cutoff
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].idx.ExpiresAtMs != found[j].idx.ExpiresAtMs {
			return found[i].idx.ExpiresAtMs < found[j].idx.ExpiresAtMs
		}
		return found[i].doc.id < found[j].doc.id
	})
	return limitDocs(found, limit), nil
}

func (m *memoryBackend) activeVouchers(_ context.Context) ([]document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []document
	for key, d := range m.docs {
		if key.coll != Vouchers {
			continue
		}
		var flag struct {
			Active bool `json:"isActive"`
		}
		if err := json.Unmarshal(d.body, &flag); err != nil {
			return nil, err
		}
		if flag.Active {
			out = append(out, d.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func limitDocs(found []indexedDoc, limit int) []document {
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]document, len(found))
	for i, f := range found {
		out[i] = f.doc
	}
	return out
}

func (m *memoryBackend) upsert(_ context.Context, coll Collection, id string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.docs[docKey{coll, id}] = document{id: id, version: m.seq, body: slices.Clone(body)}
	return nil
}

func (m *memoryBackend) remove(_ context.Context, coll Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, docKey{coll, id})
	return nil
}

func (m *memoryBackend) close() {}

type memorySession struct {
	m      *memoryBackend
	reads  map[docKey]int64
	writes map[docKey][]byte
	order  []docKey
}

func (s *memorySession) get(_ context.Context, coll Collection, id string) (document, bool, error) {
	key := docKey{coll, id}
	if body, ok := s.writes[key]; ok {
		return document{id: id, body: slices.Clone(body)}, true, nil
	}

	s.m.mu.RLock()
	d, ok := s.m.docs[key]
	s.m.mu.RUnlock()

	if _, seen := s.reads[key]; !seen {
		s.reads[key] = d.version
	}
	if !ok {
		return document{}, false, nil
	}
	return d.clone(), true, nil
}

func (s *memorySession) put(_ context.Context, coll Collection, id string, body []byte) error {
	key := docKey{coll, id}
	if _, seen := s.reads[key]; !seen {
		// blind write: the document must not exist at commit
		s.reads[key] = 0
	}
	if _, pending := s.writes[key]; !pending {
		s.order = append(s.order, key)
	}
	s.writes[key] = slices.Clone(body)
	return nil
}

func (s *memorySession) commit(_ context.Context) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for key, version := range s.reads {
		if s.m.docs[key].version != version {
			return errWriteConflict
		}
	}
	for _, key := range s.order {
		s.m.seq++
		s.m.docs[key] = document{id: key.id, version: s.m.seq, body: s.writes[key]}
	}
	return nil
}

func (s *memorySession) rollback(_ context.Context) {
	s.writes = nil
	s.order = nil
}

func (d document) clone() document {
	return document{id: d.id, version: d.version, body: slices.Clone(d.body)}
}
