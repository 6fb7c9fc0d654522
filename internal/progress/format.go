package progress

import (
	"go.uber.org/zap"

	"tracker-server/internal/models"
)

// Formatter builds denormalized progress snapshots from raw stored
// documents and a reference-data graph. It carries no per-call state and
// is safe for concurrent use.
type Formatter struct {
	logger *zap.Logger
}

func NewFormatter(logger *zap.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Format converts one user's raw progress into a formatted snapshot.
//
// The snapshot is rebuilt from scratch on every call: the four sparse maps
// are normalized, the edition overlay is applied to the hideout lists, and
// the task lists get three consistency passes (faction locks, unreachable
// fail branches, superseded alternatives). A failure inside one stage is
// logged with the user id and the remaining stages still run, so a bad
// slice of reference data degrades the snapshot instead of erasing it.
//
// raw may be nil; every scalar then takes its documented default. Inputs
// are never mutated.
func (f *Formatter) Format(g *Graph, userID string, raw *models.RawProgress) *models.FormattedProgress {
	if raw == nil {
		raw = &models.RawProgress{}
	}

	tasks := NormalizeEntries(raw.TaskCompletions, false, true)
	objectives := NormalizeEntries(raw.TaskObjectives, true, true)
	modules := NormalizeEntries(raw.HideoutModules, false, false)
	parts := NormalizeEntries(raw.HideoutParts, true, false)

	gameEdition := raw.GameEdition
	if gameEdition < 1 {
		gameEdition = models.DefaultGameEdition
	}
	pmcFaction := raw.PMCFaction
	if pmcFaction == "" {
		pmcFaction = models.FactionUSEC
	}

	f.guard(userID, "hideoutOverlay", func() {
		modules, parts = applyEditionOverlay(g, gameEdition, modules, parts)
	})
	f.guard(userID, "factionPass", func() {
		tasks, objectives = invalidateWrongFaction(g, pmcFaction, tasks, objectives)
	})
	f.guard(userID, "failBranchPass", func() {
		tasks, objectives = invalidateUnreachableFailBranches(g, tasks, objectives)
	})
	f.guard(userID, "alternativePass", func() {
		tasks, objectives = invalidateSupersededAlternatives(g, tasks, objectives)
	})

	playerLevel := raw.Level
	if playerLevel < 1 {
		playerLevel = models.DefaultPlayerLevel
	}
	displayName := raw.DisplayName
	if displayName == "" {
		displayName = defaultDisplayName(userID)
	}

	return &models.FormattedProgress{
		TasksProgress:          tasks,
		TaskObjectivesProgress: objectives,
		HideoutModulesProgress: modules,
		HideoutPartsProgress:   parts,
		DisplayName:            displayName,
		UserID:                 userID,
		PlayerLevel:            playerLevel,
		GameEdition:            gameEdition,
		PMCFaction:             pmcFaction,
	}
}

// guard runs one formatting stage and turns a panic into a logged error,
// keeping the rest of the snapshot intact.
func (f *Formatter) guard(userID, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Progress formatting stage failed",
				zap.String("userId", userID),
				zap.String("stage", stage),
				zap.Any("panic", r))
		}
	}()
	fn()
}

func defaultDisplayName(userID string) string {
	if len(userID) <= models.DisplayNamePrefixLen {
		return userID
	}
	return userID[:models.DisplayNamePrefixLen]
}
