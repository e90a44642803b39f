package pricehistory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// Store persists price samples in SQLite.
type Store struct {
	db *sql.DB
}

// Sample is one recorded price observation for a variant.
type Sample struct {
	VariantID  string
	CardID     int
	SetCode    string
	Rarity     string
	Language   string
	Price      float64
	CapturedAt time.Time
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordMergePrices inserts one sample per variant carrying a parseable
// price. Variants without a price (or with an unparseable one) are skipped.
// The whole capture is one transaction; either all samples of a merge land
// or none do.
func (s *Store) RecordMergePrices(ctx context.Context, lang string, catalog []*cards.Card, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_samples (variant_id, card_id, set_code, rarity, language, price, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, card := range catalog {
		for _, variant := range card.CardSets {
			price, ok := parsePrice(variant.SetPrice)
			if !ok || variant.VariantID == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx,
				variant.VariantID, card.ID, variant.SetCode, variant.SetRarity,
				lang, price, at.UTC(),
			); err != nil {
				return fmt.Errorf("insert sample for %s: %w", variant.VariantID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Samples returns all recorded samples for a variant, oldest first.
func (s *Store) Samples(ctx context.Context, variantID string) ([]*Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT variant_id, card_id, set_code, rarity, language, price, captured_at
		FROM price_samples
		WHERE variant_id = ?
		ORDER BY captured_at ASC, id ASC`, variantID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []*Sample
	for rows.Next() {
		sample := &Sample{}
		if err := rows.Scan(
			&sample.VariantID, &sample.CardID, &sample.SetCode, &sample.Rarity,
			&sample.Language, &sample.Price, &sample.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}

	return samples, nil
}

// LatestPrice returns the most recent recorded price for a variant. The
// second return is false when no sample exists.
func (s *Store) LatestPrice(ctx context.Context, variantID string) (float64, bool, error) {
	var price float64
	err := s.db.QueryRowContext(ctx, `
		SELECT price FROM price_samples
		WHERE variant_id = ?
		ORDER BY captured_at DESC, id DESC
		LIMIT 1`, variantID).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query latest price: %w", err)
	}
	return price, true, nil
}

// parsePrice converts the API's string price into a float. The API reports
// "0" or "0.00" for unpriced variants; those are skipped too.
func parsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
