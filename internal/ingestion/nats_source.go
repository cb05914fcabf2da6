package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"PayLedger/internal/event"
	"PayLedger/internal/observability"
)

const (
	// DefaultNATSSubject carries transaction rows as JSON.
	DefaultNATSSubject = "pay.transactions"

	natsStreamName   = "PAY_TRANSACTIONS"
	natsConsumerName = "payledger-engine"
)

// natsRow is the JSON wire format on the transactions subject. Field names
// use snake_case to match upstream producers; amount is a string so the
// broker never mangles precision.
type natsRow struct {
	Type   string `json:"type"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount,omitempty"`
}

// NATSSource consumes transaction rows from a JetStream subject until the
// context is cancelled, then reports end of input so the engine can
// finalize and emit the snapshot.
type NATSSource struct {
	rows     chan event.Event
	consumer jetstream.ConsumeContext
	log      zerolog.Logger
	metrics  *observability.Metrics
}

// ConnectNATS establishes a NATS connection and returns a JetStream
// context.
func ConnectNATS(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}

// NewNATSSource provisions the stream and consumer and starts pulling rows
// into an internal buffer.
func NewNATSSource(
	ctx context.Context,
	js jetstream.JetStream,
	subject string,
	log zerolog.Logger,
	metrics *observability.Metrics,
) (*NATSSource, error) {
	if subject == "" {
		subject = DefaultNATSSubject
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      natsStreamName,
		Subjects:  []string{subject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	}); err != nil {
		return nil, fmt.Errorf("create stream %s: %w", natsStreamName, err)
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, natsStreamName, jetstream.ConsumerConfig{
		Durable:       natsConsumerName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer %s: %w", natsConsumerName, err)
	}

	src := &NATSSource{
		rows:    make(chan event.Event, 1024),
		log:     log,
		metrics: metrics,
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		evt, err := src.parseMessage(msg.Data())
		if err != nil {
			// Malformed rows are dropped like malformed CSV rows;
			// redelivery would not fix them.
			src.log.Warn().Err(err).Msg("nats row dropped")
			if src.metrics != nil {
				src.metrics.RowsMalformed.WithLabelValues(RowReason(err)).Inc()
			}
			msg.Ack()
			return
		}

		select {
		case src.rows <- evt:
			msg.Ack()
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", subject, err)
	}
	src.consumer = cc

	log.Info().Str("subject", subject).Str("consumer", natsConsumerName).Msg("subscribed")
	return src, nil
}

func (s *NATSSource) parseMessage(data []byte) (event.Event, error) {
	var row natsRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode transaction row: %w", err)
	}
	evt, err := BuildEvent(row.Type, row.Client, row.Tx, row.Amount)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RowsParsed.Inc()
	}
	return evt, nil
}

// Next returns the next event. When the context is cancelled the source
// stops consuming and reports io.EOF so the engine finalizes.
func (s *NATSSource) Next(ctx context.Context) (event.Event, error) {
	select {
	case evt := <-s.rows:
		return evt, nil
	case <-ctx.Done():
		s.Stop()
		// Drain rows already buffered before the shutdown signal.
		select {
		case evt := <-s.rows:
			return evt, nil
		default:
			return nil, io.EOF
		}
	}
}

// Stop halts the JetStream consumer.
func (s *NATSSource) Stop() {
	if s.consumer != nil {
		s.consumer.Stop()
		s.consumer = nil
	}
}
