package ingestion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"PayLedger/internal/event"
	"PayLedger/internal/money"
)

var (
	// ErrUnknownType rejects an unrecognized event kind.
	ErrUnknownType = errors.New("unknown transaction type")

	// ErrMissingAmount rejects a deposit/withdrawal row without an amount.
	ErrMissingAmount = errors.New("missing amount")

	// ErrNegativeAmount rejects a signed amount on a deposit/withdrawal.
	// Zero amounts pass: a zero-value deposit or withdrawal is a valid
	// no-op; rejecting it belongs at the client level if anywhere.
	ErrNegativeAmount = errors.New("negative amount")
)

// ParseRow converts a CSV record (type, client, tx, amount) into a typed
// event. Fields are trimmed. The amount column is required for deposits
// and withdrawals and ignored for dispute-family rows.
func ParseRow(record []string) (event.Event, error) {
	if len(record) < 3 {
		return nil, fmt.Errorf("row has %d fields, want at least 3", len(record))
	}

	txType := strings.TrimSpace(record[0])

	client64, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("parse client: %w", err)
	}
	tx64, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse tx: %w", err)
	}

	amountText := ""
	if len(record) > 3 {
		amountText = strings.TrimSpace(record[3])
	}

	return BuildEvent(txType, uint16(client64), uint32(tx64), amountText)
}

// BuildEvent assembles a typed event from already-split fields. amountText
// is empty when the column is absent.
func BuildEvent(txType string, client uint16, tx uint32, amountText string) (event.Event, error) {
	switch txType {
	case "deposit":
		amount, err := parseEventAmount(tx, amountText)
		if err != nil {
			return nil, err
		}
		return &event.Deposit{Client: client, Tx: tx, Amount: amount}, nil

	case "withdrawal":
		amount, err := parseEventAmount(tx, amountText)
		if err != nil {
			return nil, err
		}
		return &event.Withdrawal{Client: client, Tx: tx, Amount: amount}, nil

	case "dispute":
		return &event.Dispute{Client: client, Tx: tx}, nil

	case "resolve":
		return &event.Resolve{Client: client, Tx: tx}, nil

	case "chargeback":
		return &event.Chargeback{Client: client, Tx: tx}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, txType)
	}
}

func parseEventAmount(tx uint32, amountText string) (money.Amount, error) {
	if amountText == "" {
		return money.Amount{}, fmt.Errorf("tx %d: %w", tx, ErrMissingAmount)
	}
	amount, err := money.Parse(amountText)
	if err != nil {
		return money.Amount{}, fmt.Errorf("tx %d: %w", tx, err)
	}
	if amount.IsNegative() {
		return money.Amount{}, fmt.Errorf("tx %d: %w", tx, ErrNegativeAmount)
	}
	return amount, nil
}

// RowReason maps a row-level parse failure to its metrics label.
func RowReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrMissingAmount):
		return "missing_amount"
	case errors.Is(err, ErrNegativeAmount):
		return "negative_amount"
	default:
		return "parse_error"
	}
}
