package core_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"PayLedger/internal/core"
	"PayLedger/internal/ingestion"
	"PayLedger/internal/ledger"
)

func runCSV(t *testing.T, shards int, csvText string) []ledger.Snapshot {
	t.Helper()

	engine := core.NewEngine(core.Config{Shards: shards}, nil, zerolog.Nop(), nil)
	src := ingestion.NewCSVSource(strings.NewReader(csvText), zerolog.Nop(), nil)

	snaps, err := engine.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("engine run: %v", err)
	}
	return snaps
}

func findSnapshot(t *testing.T, snaps []ledger.Snapshot, client uint16) ledger.Snapshot {
	t.Helper()
	for _, s := range snaps {
		if s.Client == client {
			return s
		}
	}
	t.Fatalf("client %d missing from snapshot", client)
	return ledger.Snapshot{}
}

func checkSnapshot(t *testing.T, s ledger.Snapshot, available, held, total string, locked bool) {
	t.Helper()
	if s.Available.String() != available {
		t.Errorf("client %d available: got %s, want %s", s.Client, s.Available, available)
	}
	if s.Held.String() != held {
		t.Errorf("client %d held: got %s, want %s", s.Client, s.Held, held)
	}
	if s.Total.String() != total {
		t.Errorf("client %d total: got %s, want %s", s.Client, s.Total, total)
	}
	if s.Locked != locked {
		t.Errorf("client %d locked: got %v, want %v", s.Client, s.Locked, locked)
	}
}

// ============================================================================
// Test: end-to-end flows
// ============================================================================

func TestEngine_BasicFlow(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,1,1,1.0
deposit,2,2,2.0
deposit,1,3,2.0
withdrawal,1,4,1.5
withdrawal,2,5,3.0
`)

	if len(snaps) != 2 {
		t.Fatalf("accounts: got %d, want 2", len(snaps))
	}
	checkSnapshot(t, findSnapshot(t, snaps, 1), "1.5000", "0.0000", "1.5000", false)
	checkSnapshot(t, findSnapshot(t, snaps, 2), "2.0000", "0.0000", "2.0000", false)
}

func TestEngine_DisputeResolve(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,1,1,1.0
dispute,1,1,
resolve,1,1,
dispute,1,1,
`)

	checkSnapshot(t, findSnapshot(t, snaps, 1), "1.0000", "0.0000", "1.0000", false)
}

func TestEngine_ClawbackViaDisputeAfterWithdraw(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,1,1,100.0
withdrawal,1,2,80.0
dispute,1,1,
`)

	checkSnapshot(t, findSnapshot(t, snaps, 1), "-80.0000", "100.0000", "20.0000", false)
}

func TestEngine_ChargebackLocksAndBlocksDeposits(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,1,1,100.0
withdrawal,1,2,80.0
dispute,1,1,
chargeback,1,1,
deposit,1,3,50.0
`)

	checkSnapshot(t, findSnapshot(t, snaps, 1), "-80.0000", "0.0000", "-80.0000", true)
}

func TestEngine_ClientMismatchRejected(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,1,1,10.0
dispute,2,1,
`)

	if len(snaps) != 1 {
		t.Fatalf("accounts: got %d, want 1", len(snaps))
	}
	checkSnapshot(t, findSnapshot(t, snaps, 1), "10.0000", "0.0000", "10.0000", false)
}

func TestEngine_WhitespaceAndPrecision(t *testing.T) {
	// The half-to-even boundary rule: 1.00015 parses and renders 1.0002.
	snaps := runCSV(t, 4, `type,client,tx,amount
  deposit , 1 , 1 , 1.00015
`)

	checkSnapshot(t, findSnapshot(t, snaps, 1), "1.0002", "0.0000", "1.0002", false)
}

func TestEngine_RowErrorsAreSkipped(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,1,1,5.0
teleport,1,2,1.0
deposit,abc,3,1.0
deposit,1,4,-2.0
deposit,1,5,
withdrawal,1,6,1.0
`)

	checkSnapshot(t, findSnapshot(t, snaps, 1), "4.0000", "0.0000", "4.0000", false)
}

func TestEngine_DeterministicAcrossShardCounts(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,10.0
deposit,2,2,20.0
deposit,3,3,30.0
deposit,4,4,40.0
withdrawal,2,5,5.0
dispute,3,3,
chargeback,3,3,
dispute,1,1,
resolve,1,1,
`

	for _, shards := range []int{1, 2, 4, 8} {
		snaps := runCSV(t, shards, input)
		if len(snaps) != 4 {
			t.Fatalf("shards=%d: accounts got %d, want 4", shards, len(snaps))
		}
		checkSnapshot(t, findSnapshot(t, snaps, 1), "10.0000", "0.0000", "10.0000", false)
		checkSnapshot(t, findSnapshot(t, snaps, 2), "15.0000", "0.0000", "15.0000", false)
		checkSnapshot(t, findSnapshot(t, snaps, 3), "0.0000", "0.0000", "0.0000", true)
		checkSnapshot(t, findSnapshot(t, snaps, 4), "40.0000", "0.0000", "40.0000", false)
	}
}

func TestEngine_SnapshotSortedByClient(t *testing.T) {
	snaps := runCSV(t, 4, `type,client,tx,amount
deposit,40,1,1.0
deposit,2,2,1.0
deposit,17,3,1.0
`)

	for i := 1; i < len(snaps); i++ {
		if snaps[i-1].Client >= snaps[i].Client {
			t.Fatalf("snapshot not sorted: %d before %d", snaps[i-1].Client, snaps[i].Client)
		}
	}
}

func TestEngine_ManyClientsManyShards(t *testing.T) {
	var b strings.Builder
	b.WriteString("type,client,tx,amount\n")
	tx := 1
	for client := 1; client <= 200; client++ {
		fmt.Fprintf(&b, "deposit,%d,%d,10.0\n", client, tx)
		tx++
		fmt.Fprintf(&b, "withdrawal,%d,%d,3.0\n", client, tx)
		tx++
	}

	snaps := runCSV(t, 8, b.String())
	if len(snaps) != 200 {
		t.Fatalf("accounts: got %d, want 200", len(snaps))
	}
	for _, s := range snaps {
		if s.Available.String() != "7.0000" {
			t.Fatalf("client %d available: got %s, want 7.0000", s.Client, s.Available)
		}
	}
}
