// Package timeline merges the temperature and mask capture streams into a
// single time-ordered record view. Correlation is a full outer join keyed on
// the whole-second timestamp: a temperature reading and a mask reading taken
// in the same instant merge into one entry, unmatched readings surface with
// the other field empty.
package timeline

import (
	"context"
	"sort"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"

	"go.uber.org/zap"
)

// ImageFetcher turns a stored image path into a base64 payload. Fallible
// and independently time-boxed per call.
type ImageFetcher interface {
	FetchAsBase64(ctx context.Context, path string) (string, error)
}

// Entry is one merged observation for a subject at one second.
type Entry struct {
	Visitor     bool
	Person      string
	PersonUID   string
	Mobile      string
	Location    string
	Temperature string // "" when only a mask reading exists at this second
	// Mask reports whether a mask was detected. No mask record at this
	// second means "mask not detected", not "no data": absence is an
	// alert condition by contract with the capture devices.
	Mask        bool
	Timestamp   time.Time
	ImagePath   string
	ImageBase64 string
}

// Join full-outer-joins the two projections on second-truncated timestamps.
// Inputs are deduplicated first; the result is unsorted.
func Join(temps []repository.TemperatureObservation, masks []repository.MaskObservation) []Entry {
	temps = dedupTemps(temps)
	masks = dedupMasks(masks)

	maskAt := make(map[time.Time]repository.MaskObservation, len(masks))
	for _, m := range masks {
		maskAt[domain.TruncateSecond(m.Timestamp)] = m
	}

	entries := make([]Entry, 0, len(temps)+len(masks))
	matched := make(map[time.Time]bool, len(temps))

	for _, t := range temps {
		ts := domain.TruncateSecond(t.Timestamp)
		_, hasMask := maskAt[ts]
		matched[ts] = true
		entries = append(entries, Entry{
			Visitor:     t.PersonUID == domain.VisitorUID,
			Person:      t.PersonName,
			PersonUID:   t.PersonUID,
			Mobile:      t.Mobile,
			Location:    t.Location,
			Temperature: domain.FormatTemperature(t.Temperature),
			Mask:        hasMask,
			Timestamp:   ts,
			ImagePath:   t.ImagePath,
			ImageBase64: t.ImageBase64,
		})
	}

	for _, m := range masks {
		ts := domain.TruncateSecond(m.Timestamp)
		if matched[ts] {
			continue
		}
		entries = append(entries, Entry{
			Visitor:     m.PersonUID == domain.VisitorUID,
			Person:      m.PersonName,
			PersonUID:   m.PersonUID,
			Mobile:      m.Mobile,
			Location:    m.Location,
			Temperature: "",
			Mask:        true,
			Timestamp:   ts,
			ImagePath:   m.ImagePath,
			ImageBase64: m.ImageBase64,
		})
	}

	return entries
}

// SortDescending orders entries most recent first for display.
func SortDescending(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// ResolveImages fills each entry's display image: the inline capture wins,
// otherwise the stored path is fetched and encoded. A failed fetch degrades
// that one entry to an empty image; it never fails the batch.
func ResolveImages(ctx context.Context, entries []Entry, fetcher ImageFetcher, logger *zap.Logger) {
	for i := range entries {
		if entries[i].ImageBase64 != "" || entries[i].ImagePath == "" {
			continue
		}
		img, err := fetcher.FetchAsBase64(ctx, entries[i].ImagePath)
		if err != nil {
			logger.Warn("image fetch failed, substituting empty",
				zap.String("path", entries[i].ImagePath),
				zap.Error(err))
			continue
		}
		entries[i].ImageBase64 = img
	}
}

// Image is the resolved display image for an entry.
func (e Entry) Image() string { return e.ImageBase64 }

func dedupTemps(in []repository.TemperatureObservation) []repository.TemperatureObservation {
	seen := make(map[repository.TemperatureObservation]bool, len(in))
	out := in[:0]
	for _, o := range in {
		if seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

func dedupMasks(in []repository.MaskObservation) []repository.MaskObservation {
	seen := make(map[repository.MaskObservation]bool, len(in))
	out := in[:0]
	for _, o := range in {
		if seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}
