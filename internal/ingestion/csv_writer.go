package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"PayLedger/internal/ledger"
)

// WriteSnapshot renders the account snapshot as CSV. Amounts carry exactly
// four fractional digits; rows arrive sorted by client id.
func WriteSnapshot(w io.Writer, accounts []ledger.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, a := range accounts {
		row := []string{
			strconv.FormatUint(uint64(a.Client), 10),
			a.Available.String(),
			a.Held.String(),
			a.Total.String(),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", a.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
