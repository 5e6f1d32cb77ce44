// Command seed loads a demo showtime, vouchers and a customer into the
// postgres store and prints an access token for that customer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/infra/db"
	"cinebooking/internal/infra/docstore"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/pkg/jwt"
	"cinebooking/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	basePrice := flag.Int64("price", 100_000, "base seat price")
	startsIn := flag.Duration("starts-in", 48*time.Hour, "time until the showtime starts")
	flag.Parse()

	_ = godotenv.Load()
	if err := run(*basePrice, *startsIn); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(basePrice int64, startsIn time.Duration) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := docstore.Migrate(ctx, pool); err != nil {
		return err
	}
	store := docstore.NewPostgresStore(pool)

	now := time.Now()
	startsAt := now.Add(startsIn).Truncate(time.Minute)
	seats := showtime.GenerateStandardSeatMap(showtime.DefaultRows, showtime.DefaultSeatsPerRow, basePrice)
	st, err := showtime.New(uuid.Nil, "demo-movie", "room-1", startsAt, startsAt.Add(2*time.Hour), seats, now)
	if err != nil {
		return err
	}
	if err := store.PutShowtime(ctx, st); err != nil {
		return err
	}

	validTo := now.Add(30 * 24 * time.Hour)
	for _, p := range []voucher.Params{
		{Code: "SAVE10", Kind: voucher.KindPercent, Value: 10, MaxDiscount: ptr.Of(int64(20_000)), MinOrderValue: 50_000, UsageLimit: 100, Description: "10% off"},
		{Code: "FLAT50K", Kind: voucher.KindFixed, Value: 50_000, MinOrderValue: 150_000, UsageLimit: 50, Description: "50,000 off"},
	} {
		p.ValidFrom, p.ValidTo = &now, &validTo
		p.Active = true
		p.CreatedAt, p.UpdatedAt = now, now
		v, err := voucher.New(p)
		if err != nil {
			return err
		}
		if err := store.PutVoucher(ctx, v); err != nil {
			return err
		}
	}

	customerID := uuid.New()
	if err := store.PutCustomer(ctx, customerID, map[string]any{"name": "Demo Customer"}); err != nil {
		return err
	}
	token, err := jwt.NewService(cfg.JWT.Secret).GenerateToken(customerID, 24*time.Hour)
	if err != nil {
		return err
	}

	fmt.Printf("showtime_id=%s\ncustomer_id=%s\ntoken=%s\n", st.ID(), customerID, token)
	return nil
}
