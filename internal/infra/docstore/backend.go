package docstore

import (
	"context"
	"time"

	"cinebooking/internal/pkg/errs"
)

type Collection string

const (
	Showtimes Collection = "showtimes"
	Bookings  Collection = "bookings"
	Vouchers  Collection = "vouchers"
	Customers Collection = "customers"
)

var collections = []Collection{Showtimes, Bookings, Vouchers, Customers}

func (c Collection) valid() bool {
	for _, known := range collections {
		if c == known {
			return true
		}
	}
	return false
}

// errWriteConflict is returned when a document changed after the transaction read it.
var errWriteConflict = errs.New("document write conflict")

type docKey struct {
	coll Collection
	id   string
}

type document struct {
	id      string
	version int64
	body    []byte
}

// backend is a storage engine able to run optimistic multi-document transactions.
type backend interface {
	begin(ctx context.Context) (session, error)

	get(ctx context.Context, coll Collection, id string) (document, bool, error)
	bookingsByCustomer(ctx context.Context, customerID string, limit int) ([]document, error)
	expiredPending(ctx context.Context, before time.Time, limit int) ([]document, error)
	activeVouchers(ctx context.Context) ([]document, error)

	upsert(ctx context.Context, coll Collection, id string, body []byte) error
	remove(ctx context.Context, coll Collection, id string) error
	close()
}

// session is one transaction attempt. It records the version of every document
// it reads and refuses to commit if any of them changed in the meantime.
type session interface {
	get(ctx context.Context, coll Collection, id string) (document, bool, error)
	// put replaces the document, or creates it when it was never read in this session.
	put(ctx context.Context, coll Collection, id string, body []byte) error
	commit(ctx context.Context) error
	rollback(ctx context.Context)
}
