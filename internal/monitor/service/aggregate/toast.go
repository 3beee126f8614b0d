package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

// Toast is the one deliberate notification this pipeline produces: a single
// critical toast per novel batch that contains critical or error records.
type Toast struct {
	ID        string    `json:"id"`
	BatchSeq  uint64    `json:"batchSeq"`
	Records   int       `json:"records"`
	Headline  string    `json:"headline"`
	CreatedAt time.Time `json:"createdAt"`
}

// NeedsToast reports whether a batch warrants a critical toast: any record
// with severity critical or kind error. At most one toast per batch, never
// one per record.
func NeedsToast(alerts []model.AlertRecord) bool {
	for _, a := range alerts {
		if a.Critical() {
			return true
		}
	}
	return false
}

// Headline picks the message of the first critical record for the toast body.
func Headline(alerts []model.AlertRecord) string {
	for _, a := range alerts {
		if a.Critical() {
			return a.Message
		}
	}
	return ""
}

// BatchFingerprint identifies a batch by its critical content so an unchanged
// poll result does not re-fire the same toast. Keyed off id, kind, and
// severity of the records that justify the toast.
func BatchFingerprint(alerts []model.AlertRecord) string {
	h := sha256.New()
	for _, a := range alerts {
		if !a.Critical() {
			continue
		}
		h.Write([]byte(a.ID))
		h.Write([]byte{'|'})
		h.Write([]byte(a.Kind))
		h.Write([]byte{'|'})
		h.Write([]byte(a.Severity))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CategoriesOf lists distinct categories in a batch, fetch order preserved.
func CategoriesOf(alerts []model.AlertRecord) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		c := strings.TrimSpace(a.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
