package progress

import (
	"tracker-server/internal/models"
)

// Station ids with edition-gated behavior, fixed by the upstream game
// data. Stash levels unlock with the purchased game edition; the top
// edition additionally ships the cultist circle fully built.
const (
	StashStationID         = "5d484fc0654e76006657e0ab"
	CultistCircleStationID = "667298e75ea6b4493c08f266"
)

// applyEditionOverlay force-completes the hideout levels a player's game
// edition grants for free. The overlay is applied to the formatted view
// only and never written back to the stored document.
func applyEditionOverlay(g *Graph, gameEdition int, modules, parts []models.ProgressItem) ([]models.ProgressItem, []models.ProgressItem) {
	if stash := g.Station(StashStationID); stash != nil {
		for _, level := range stash.Levels {
			if level.Level > gameEdition {
				continue
			}
			modules, parts = completeLevel(level, modules, parts)
		}
	}

	if gameEdition >= models.MaxGameEdition {
		if circle := g.Station(CultistCircleStationID); circle != nil {
			for _, level := range circle.Levels {
				modules, parts = completeLevel(level, modules, parts)
			}
		}
	}
	return modules, parts
}

func completeLevel(level models.HideoutLevel, modules, parts []models.ProgressItem) ([]models.ProgressItem, []models.ProgressItem) {
	modules = markComplete(modules, level.ID)
	for _, req := range level.ItemRequirements {
		parts = markPartComplete(parts, req)
	}
	return modules, parts
}

// markComplete upserts a module entry as complete.
func markComplete(items []models.ProgressItem, id string) []models.ProgressItem {
	if i := findItem(items, id); i >= 0 {
		items[i].Complete = true
		return items
	}
	return append(items, models.ProgressItem{ID: id, Complete: true})
}

// markPartComplete upserts an item-requirement entry as complete. A
// recorded count is kept as-is; created entries report the full required
// count.
func markPartComplete(parts []models.ProgressItem, req models.HideoutItemRequirement) []models.ProgressItem {
	if i := findItem(parts, req.ID); i >= 0 {
		parts[i].Complete = true
		return parts
	}
	return append(parts, models.ProgressItem{ID: req.ID, Complete: true, Count: req.Count})
}
