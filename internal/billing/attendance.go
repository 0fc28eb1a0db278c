package billing

import "github.com/chesterguides/guiding-backend/internal/model"

// Attendance is the per-slot head count split by sales channel.  VIC
// covers every non-online kind (paper tickets, scanned references and
// anything a future channel introduces); Online is the exact literal
// "online" only.
type Attendance struct {
	Total  int64
	VIC    int64
	Online int64
}

// SummarizeScans folds ticket scans into per-slot attendance.  Scans with
// no person count contribute one person.  Slots without any scans are
// simply absent from the result; callers treat absence as zero.
func SummarizeScans(scans []model.TicketScan) map[uint64]Attendance {
	out := make(map[uint64]Attendance, len(scans))
	for _, scan := range scans {
		att := out[scan.SlotID]
		persons := scan.PersonCount()
		att.Total += persons
		if scan.Kind == model.KindOnline {
			att.Online += persons
		} else {
			att.VIC += persons
		}
		out[scan.SlotID] = att
	}
	return out
}
