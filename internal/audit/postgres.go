package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QueryRower is the slice of *sql.DB the sink needs. Satisfied by *sql.DB
// and *sql.Tx.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier adds row iteration for range reads.
type Querier interface {
	QueryRower
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresSink persists audit events, one row per event, with a SHA-256
// integrity column computed over the canonical JSON of the row.
type PostgresSink struct {
	db Querier
}

func NewPostgresSink(db Querier) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Publish(ctx context.Context, header Header, events ...Event) error {
	for _, event := range events {
		if _, err := Insert(ctx, s.db, header, event); err != nil {
			return err
		}
	}
	return nil
}

// Insert writes one audit event row and returns its id.
func Insert(ctx context.Context, q QueryRower, header Header, event Event) (int64, error) {
	if q == nil {
		return 0, errors.New("queryer is required")
	}
	if strings.TrimSpace(header.CorrelationID) == "" {
		return 0, errors.New("CorrelationID is required")
	}
	if strings.TrimSpace(event.Name) == "" {
		return 0, errors.New("event Name is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload := event.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	integrity, err := ComputeIntegritySHA256(header, event, payloadJSON)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.QueryRowContext(
		ctx,
		`INSERT INTO auth_audit_events (
			correlation_id,
			transaction_id,
			local_time,
			utc_time,
			amount,
			currency,
			pan_hash,
			mcc_code,
			source,
			version,
			event_name,
			event_description,
			occurred_at,
			payload,
			integrity_sha256
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING event_id`,
		strings.TrimSpace(header.CorrelationID),
		strings.TrimSpace(header.TransactionID),
		header.LocalTime,
		header.UTCTime.UTC(),
		header.Amount.String(),
		header.Currency,
		header.PANHash,
		header.MCCCode,
		header.Source,
		header.Version,
		strings.TrimSpace(event.Name),
		event.Description,
		event.OccurredAt.UTC(),
		payloadJSON,
		integrity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert audit event: %w", err)
	}
	return id, nil
}

// ComputeIntegritySHA256 hashes the canonical JSON form of one audit row.
func ComputeIntegritySHA256(header Header, event Event, payloadJSON []byte) (string, error) {
	type integrityInput struct {
		CorrelationID string          `json:"correlation_id"`
		TransactionID string          `json:"transaction_id,omitempty"`
		UTCTime       time.Time       `json:"utc_time"`
		Amount        string          `json:"amount"`
		Currency      string          `json:"currency,omitempty"`
		PANHash       string          `json:"pan_hash,omitempty"`
		MCCCode       string          `json:"mcc_code,omitempty"`
		Source        string          `json:"source,omitempty"`
		Version       string          `json:"version,omitempty"`
		EventName     string          `json:"event_name"`
		OccurredAt    time.Time       `json:"occurred_at"`
		Payload       json.RawMessage `json:"payload"`
	}

	in := integrityInput{
		CorrelationID: strings.TrimSpace(header.CorrelationID),
		TransactionID: strings.TrimSpace(header.TransactionID),
		UTCTime:       header.UTCTime.UTC(),
		Amount:        header.Amount.String(),
		Currency:      header.Currency,
		PANHash:       header.PANHash,
		MCCCode:       header.MCCCode,
		Source:        header.Source,
		Version:       header.Version,
		EventName:     strings.TrimSpace(event.Name),
		OccurredAt:    event.OccurredAt.UTC(),
		Payload:       payloadJSON,
	}

	blob, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal integrity: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}

// Record is one persisted audit row, as read back for export.
type Record struct {
	EventID         int64
	Header          Header
	Event           Event
	PayloadJSON     json.RawMessage
	IntegritySHA256 string
}

// Range reads the audit rows whose occurred_at falls in [from, to), oldest
// first.
func (s *PostgresSink) Range(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT
			event_id,
			correlation_id,
			transaction_id,
			local_time,
			utc_time,
			amount,
			currency,
			pan_hash,
			mcc_code,
			source,
			version,
			event_name,
			event_description,
			occurred_at,
			payload,
			integrity_sha256
		FROM auth_audit_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at, event_id`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec    Record
			amount string
		)
		if err := rows.Scan(
			&rec.EventID,
			&rec.Header.CorrelationID,
			&rec.Header.TransactionID,
			&rec.Header.LocalTime,
			&rec.Header.UTCTime,
			&amount,
			&rec.Header.Currency,
			&rec.Header.PANHash,
			&rec.Header.MCCCode,
			&rec.Header.Source,
			&rec.Header.Version,
			&rec.Event.Name,
			&rec.Event.Description,
			&rec.Event.OccurredAt,
			&rec.PayloadJSON,
			&rec.IntegritySHA256,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		parsed, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		rec.Header.Amount = parsed
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return parsed, nil
}
