package redisx

import (
	"context"
	"encoding/json"
	"os"
	"reflect"
	"testing"
	"testing/quick"
	"time"

	"github.com/ariefcatur/gametrust/internal/logger"
)

type item struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Amount  int64    `json:"amount"`
	Flagged bool     `json:"flagged"`
	Images  []string `json:"images"`
}

func TestJSONRoundTripPreservesShape(t *testing.T) {
	prop := func(in []item) bool {
		for i := range in {
			if in[i].Images == nil {
				in[i].Images = []string{}
			}
		}
		b, err := json.Marshal(in)
		if err != nil {
			return false
		}
		out, err := Decode[[]item](b)
		if err != nil {
			return false
		}
		if len(in) == 0 {
			return len(out) == 0
		}
		return reflect.DeepEqual(in, out)
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode[[]item]([]byte(`[{"id":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestSnapshotAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("REDIS_ADDR is empty; set it to a live Redis to run this test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb := New(addr)
	defer rdb.Close()

	snap := NewSnapshot[[]item](rdb, "test_"+KeySnapshotListings, time.Minute, logger.Discard())
	snap.Invalidate(ctx)
	if _, ok := snap.Load(ctx); ok {
		t.Fatal("expected miss on empty key")
	}

	want := []item{{ID: "l1", Status: "active", Amount: 1999, Images: []string{"a.png"}}}
	snap.Save(ctx, want)
	got, ok := snap.Load(ctx)
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	if err := rdb.Set(ctx, snap.Key(), "{not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed malformed: %v", err)
	}
	if _, ok := snap.Load(ctx); ok {
		t.Fatal("expected malformed snapshot to be a miss")
	}
}
