package progress

import (
	"sort"

	"tracker-server/internal/models"
)

// NormalizeEntries converts one sparse raw progress map into a dense list
// of canonical items. Entries written by older clients carry a textual
// status, newer ones carry boolean flags; both shapes are resolved here so
// the rest of the pipeline only ever sees ProgressItem.
//
// count is carried over only when includeCount is set, invalid only when
// includeInvalid is set. An invalid item is never reported complete.
// Output is sorted by id so identical inputs produce identical output.
func NormalizeEntries(raw map[string]models.RawEntry, includeCount, includeInvalid bool) []models.ProgressItem {
	items := make([]models.ProgressItem, 0, len(raw))
	if len(raw) == 0 {
		return items
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, id := range keys {
		entry := raw[id]
		item := models.ProgressItem{ID: id}

		if entry.Status != "" {
			item.Complete = entry.Status == string(models.TaskStateCompleted)
		} else if entry.Complete != nil {
			item.Complete = *entry.Complete
		}

		if entry.Failed != nil && *entry.Failed {
			item.Failed = true
		} else if entry.Status == string(models.TaskStateFailed) {
			item.Failed = true
		}

		if includeCount && entry.Count != nil {
			item.Count = *entry.Count
		}
		if includeInvalid && entry.Invalid != nil {
			item.Invalid = *entry.Invalid
		}

		// Инвалидация всегда перекрывает завершение.
		if item.Invalid {
			item.Complete = false
		}

		items = append(items, item)
	}
	return items
}
