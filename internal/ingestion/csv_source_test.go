package ingestion_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"PayLedger/internal/event"
	"PayLedger/internal/ingestion"
)

func drainCSV(t *testing.T, csvText string) ([]event.Event, error) {
	t.Helper()

	src := ingestion.NewCSVSource(strings.NewReader(csvText), zerolog.Nop(), nil)
	var events []event.Event
	for {
		evt, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, evt)
	}
}

func TestCSVSource_ReadsEventsInOrder(t *testing.T) {
	events, err := drainCSV(t, `type,client,tx,amount
deposit,1,1,1.0
withdrawal,1,2,0.5
dispute,1,1,
`)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("events: got %d, want 3", len(events))
	}
	wantTypes := []event.EventType{
		event.EventTypeDeposit,
		event.EventTypeWithdrawal,
		event.EventTypeDispute,
	}
	for i, want := range wantTypes {
		if events[i].EventType() != want {
			t.Errorf("events[%d]: got %v, want %v", i, events[i].EventType(), want)
		}
	}
}

func TestCSVSource_SkipsBadRowsKeepsGoodOnes(t *testing.T) {
	events, err := drainCSV(t, `type,client,tx,amount
deposit,1,1,1.0
teleport,1,2,1.0
deposit,notaclient,3,1.0
deposit,2,4,-1.0
deposit,2,5,2.0
`)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	if events[1].TxID() != 5 {
		t.Errorf("surviving tx: got %d, want 5", events[1].TxID())
	}
}

func TestCSVSource_HeaderRequired(t *testing.T) {
	_, err := drainCSV(t, `deposit,1,1,1.0
`)
	if err == nil {
		t.Fatal("missing header must be fatal")
	}
}

func TestCSVSource_HeaderCaseAndSpacingTolerated(t *testing.T) {
	events, err := drainCSV(t, `Type, Client, Tx, Amount
deposit,1,1,1.0
`)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events: got %d, want 1", len(events))
	}
}

func TestCSVSource_EmptyInputAfterHeader(t *testing.T) {
	events, err := drainCSV(t, "type,client,tx,amount\n")
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events: got %d, want 0", len(events))
	}
}

func TestCSVSource_ContextCancellation(t *testing.T) {
	src := ingestion.NewCSVSource(strings.NewReader("type,client,tx,amount\ndeposit,1,1,1.0\n"), zerolog.Nop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
