package billing

import (
	"testing"

	"github.com/chesterguides/guiding-backend/internal/model"
)

func persons(n uint32) *uint32 { return &n }

func TestSummarizeScans_ChannelSplit(t *testing.T) {
	scans := []model.TicketScan{
		{SlotID: 1, Kind: model.KindPaper, Persons: persons(2)},
		{SlotID: 1, Kind: model.KindOnline, Persons: persons(3)},
		{SlotID: 1, Kind: model.KindPaper}, // missing persons counts as 1
	}
	got := SummarizeScans(scans)
	att, ok := got[1]
	if !ok {
		t.Fatalf("slot 1 missing from summary")
	}
	if att.Total != 6 || att.VIC != 3 || att.Online != 3 {
		t.Fatalf("expected total=6 vic=3 online=3, got %+v", att)
	}
}

// Only the exact literal "online" counts as online; unknown kinds bill
// through the VIC bucket.
func TestSummarizeScans_UnknownKindIsVIC(t *testing.T) {
	scans := []model.TicketScan{
		{SlotID: 7, Kind: model.KindScanned, Persons: persons(2)},
		{SlotID: 7, Kind: "voucher", Persons: persons(4)},
		{SlotID: 7, Kind: "ONLINE", Persons: persons(1)}, // case sensitive
	}
	att := SummarizeScans(scans)[7]
	if att.VIC != 7 || att.Online != 0 {
		t.Fatalf("expected vic=7 online=0, got %+v", att)
	}
}

func TestSummarizeScans_AbsentSlotMeansZero(t *testing.T) {
	got := SummarizeScans([]model.TicketScan{{SlotID: 2, Kind: model.KindPaper}})
	if _, ok := got[99]; ok {
		t.Fatalf("slot 99 should be absent from summary")
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one slot in summary, got %d", len(got))
	}
}
