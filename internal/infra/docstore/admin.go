package docstore

import (
	"context"
	"encoding/json"

	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra"

	"github.com/google/uuid"
)

// Catalog writes come from the admin side (seeding, back office) and bypass
// the optimistic checks: they overwrite whatever is stored.

func (s *Store) PutShowtime(ctx context.Context, st *showtime.Showtime) error {
	body, err := encodeShowtime(st)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode showtime", err)
	}
	if err := s.backend.upsert(ctx, Showtimes, st.ID().String(), body); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to put showtime", err)
	}
	return nil
}

func (s *Store) DeleteShowtime(ctx context.Context, id uuid.UUID) error {
	if err := s.backend.remove(ctx, Showtimes, id.String()); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to delete showtime", err)
	}
	return nil
}

func (s *Store) PutVoucher(ctx context.Context, v *voucher.Voucher) error {
	body, err := encodeVoucher(v)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode voucher", err)
	}
	if err := s.backend.upsert(ctx, Vouchers, v.Code().String(), body); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to put voucher", err)
	}
	return nil
}

// PutCustomer registers a customer record as the identity service would.
func (s *Store) PutCustomer(ctx context.Context, id uuid.UUID, profile map[string]any) error {
	record := map[string]any{"id": id}
	for k, v := range profile {
		record[k] = v
	}
	body, err := json.Marshal(record)
	if err != nil {
		return infra.WrapRepoErr(infra.KindCorruptDocument, "failed to encode customer", err)
	}
	if err := s.backend.upsert(ctx, Customers, id.String(), body); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to put customer", err)
	}
	return nil
}
