package availability

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// SourceKey площадка и вид спорта, из которых пришла доступность
type SourceKey struct {
	FacilityID int64
	SportID    int64
}

// Source результат Merge для одного кандидата
type Source struct {
	Key                SourceKey
	GranularityMinutes int
	Slots              []SlotOccupancy
}

// MergedSource кандидат, который может обслужить слот, и его свободные корты
type MergedSource struct {
	Key          SourceKey
	FreeCourtIDs []int64
}

// MergedSlot слот объединённой выдачи
// Sources пуст, если слот есть в сетке, но свободных кортов нет ни у кого
type MergedSlot struct {
	Slot    domain.Slot
	Sources []MergedSource
}

// MergeSources объединяет доступность нескольких площадок по ключу слота "HH:MM-HH:MM"
// Все источники обязаны иметь одинаковый шаг сетки, иначе ErrGranularityMismatch
func MergeSources(sources []Source) ([]MergedSlot, error) {
	if len(sources) == 0 {
		return []MergedSlot{}, nil
	}

	granularity := sources[0].GranularityMinutes
	for _, src := range sources[1:] {
		if src.GranularityMinutes != granularity {
			return nil, fmt.Errorf("%w: facility %d sport %d uses %d minutes, facility %d sport %d uses %d minutes",
				domain.ErrGranularityMismatch,
				sources[0].Key.FacilityID, sources[0].Key.SportID, granularity,
				src.Key.FacilityID, src.Key.SportID, src.GranularityMinutes)
		}
	}

	type bucket struct {
		slot   domain.Slot
		order  []SourceKey
		courts map[SourceKey]map[int64]struct{}
	}
	buckets := make(map[string]*bucket)

	for _, src := range sources {
		for _, so := range src.Slots {
			key := so.Slot.Key()
			b, ok := buckets[key]
			if !ok {
				b = &bucket{slot: so.Slot, courts: make(map[SourceKey]map[int64]struct{})}
				buckets[key] = b
			}

			free := so.FreeCourtIDs()
			if len(free) == 0 {
				continue
			}
			set, ok := b.courts[src.Key]
			if !ok {
				set = make(map[int64]struct{})
				b.courts[src.Key] = set
				b.order = append(b.order, src.Key)
			}
			for _, id := range free {
				set[id] = struct{}{}
			}
		}
	}

	result := make([]MergedSlot, 0, len(buckets))
	for _, b := range buckets {
		merged := MergedSlot{Slot: b.slot, Sources: make([]MergedSource, 0, len(b.order))}
		for _, key := range b.order {
			ids := make([]int64, 0, len(b.courts[key]))
			for id := range b.courts[key] {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			merged.Sources = append(merged.Sources, MergedSource{Key: key, FreeCourtIDs: ids})
		}
		result = append(result, merged)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Slot, result[j].Slot
		if a.Start.Minutes() != b.Start.Minutes() {
			return a.Start.Minutes() < b.Start.Minutes()
		}
		return a.End.Minutes() < b.End.Minutes()
	})

	return result, nil
}
