package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"PayLedger/internal/event"
	"PayLedger/internal/observability"
)

var expectedHeader = []string{"type", "client", "tx", "amount"}

// CSVSource pulls events from a CSV stream. Per-row failures (malformed
// fields, unknown types, bad amounts) are warned and skipped; only
// stream-structure and I/O errors abort the run.
type CSVSource struct {
	reader     *csv.Reader
	log        zerolog.Logger
	metrics    *observability.Metrics
	headerDone bool
}

func NewCSVSource(r io.Reader, log zerolog.Logger, metrics *observability.Metrics) *CSVSource {
	cr := csv.NewReader(r)
	// Row width is validated per-row: dispute-family rows may omit the
	// amount column entirely.
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &CSVSource{reader: cr, log: log, metrics: metrics}
}

// Next returns the next parsed event, io.EOF at end of input, or a fatal
// stream error.
func (s *CSVSource) Next(ctx context.Context) (event.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.log.Warn().Err(err).Msg("malformed csv row dropped")
			s.recordMalformed("parse_error")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}

		if !s.headerDone {
			if err := validateHeader(record); err != nil {
				return nil, err
			}
			s.headerDone = true
			continue
		}

		evt, err := ParseRow(record)
		if err != nil {
			s.log.Warn().Err(err).Strs("row", append([]string(nil), record...)).Msg("row dropped")
			s.recordMalformed(RowReason(err))
			continue
		}

		if s.metrics != nil {
			s.metrics.RowsParsed.Inc()
		}
		return evt, nil
	}
}

func (s *CSVSource) recordMalformed(reason string) {
	if s.metrics != nil {
		s.metrics.RowsMalformed.WithLabelValues(reason).Inc()
	}
}

func validateHeader(record []string) error {
	if len(record) != len(expectedHeader) {
		return fmt.Errorf("bad header: got %d columns, want %d", len(record), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		if strings.ToLower(strings.TrimSpace(record[i])) != want {
			return fmt.Errorf("bad header: column %d is %q, want %q", i, record[i], want)
		}
	}
	return nil
}
