package gamedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tracker-server/internal/models"
)

// Fetcher pulls one consistent reference-data snapshot from upstream.
type Fetcher interface {
	FetchGameData(ctx context.Context) (*models.GameData, error)
}

var _ Fetcher = (*Client)(nil)

// Client queries the upstream GraphQL game-data API.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger.Named("GameDataClient"),
	}
}

const tasksQuery = `{
  tasks(lang: en) {
    id
    name
    minPlayerLevel
    factionName
    objectives { id type optional }
    taskRequirements { task { id } status }
    failConditions {
      ... on TaskObjectiveTaskStatus {
        task { id }
        status
      }
    }
  }
}`

const hideoutQuery = `{
  hideoutStations(lang: en) {
    id
    name
    normalizedName
    levels {
      id
      level
      itemRequirements { id count }
    }
  }
}`

// FetchGameData выполняет оба запроса параллельно и собирает снапшот.
func (c *Client) FetchGameData(ctx context.Context) (*models.GameData, error) {
	var (
		tasks    []models.Task
		stations []models.HideoutStation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var payload struct {
			Tasks []gqlTask `json:"tasks"`
		}
		if err := c.query(gctx, tasksQuery, &payload); err != nil {
			return fmt.Errorf("tasks query: %w", err)
		}
		tasks = mapTasks(payload.Tasks)
		return nil
	})
	g.Go(func() error {
		var payload struct {
			HideoutStations []gqlHideoutStation `json:"hideoutStations"`
		}
		if err := c.query(gctx, hideoutQuery, &payload); err != nil {
			return fmt.Errorf("hideout query: %w", err)
		}
		stations = mapStations(payload.HideoutStations)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("Fetched game data",
		zap.Int("tasks", len(tasks)), zap.Int("stations", len(stations)))
	return &models.GameData{
		Tasks:     tasks,
		Stations:  stations,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (c *Client) query(ctx context.Context, query string, out interface{}) error {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("empty graphql response")
	}
	return json.Unmarshal(envelope.Data, out)
}

// Wire shapes of the upstream API.

type gqlTaskRef struct {
	ID string `json:"id"`
}

type gqlTask struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MinPlayerLevel int    `json:"minPlayerLevel"`
	FactionName    string `json:"factionName"`
	Objectives     []struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Optional bool   `json:"optional"`
	} `json:"objectives"`
	TaskRequirements []struct {
		Task   gqlTaskRef `json:"task"`
		Status []string   `json:"status"`
	} `json:"taskRequirements"`
	FailConditions []struct {
		Task   *gqlTaskRef `json:"task"`
		Status []string    `json:"status"`
	} `json:"failConditions"`
}

type gqlHideoutStation struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`
	Levels         []struct {
		ID               string `json:"id"`
		Level            int    `json:"level"`
		ItemRequirements []struct {
			ID    string `json:"id"`
			Count int    `json:"count"`
		} `json:"itemRequirements"`
	} `json:"levels"`
}

func mapTasks(raw []gqlTask) []models.Task {
	tasks := make([]models.Task, 0, len(raw))
	for _, rt := range raw {
		task := models.Task{
			ID:             rt.ID,
			Name:           rt.Name,
			MinPlayerLevel: rt.MinPlayerLevel,
			FactionName:    rt.FactionName,
		}
		for _, obj := range rt.Objectives {
			task.Objectives = append(task.Objectives, models.TaskObjective{
				ID:       obj.ID,
				Type:     obj.Type,
				Optional: obj.Optional,
			})
		}
		for _, req := range rt.TaskRequirements {
			task.Requirements = append(task.Requirements, models.TaskRequirement{
				TaskID: req.Task.ID,
				Status: req.Status,
			})
		}
		tasks = append(tasks, task)
	}
	deriveAlternatives(raw, tasks)
	return tasks
}

// deriveAlternatives turns fail conditions into the branch metadata the
// formatting engine works with. A fail condition "this task fails when X
// completes" makes the two tasks mutually exclusive alternatives and
// records the foreclosure on X as a finish reward.
func deriveAlternatives(raw []gqlTask, tasks []models.Task) {
	index := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = &tasks[i]
	}

	for _, rt := range raw {
		for _, fc := range rt.FailConditions {
			if fc.Task == nil || !statusListHas(fc.Status, models.RequirementStatusComplete) {
				continue
			}
			failing := index[rt.ID]
			trigger := index[fc.Task.ID]
			if failing == nil || trigger == nil {
				continue
			}
			trigger.FinishRewards = append(trigger.FinishRewards, models.TaskStatusReward{
				TaskID: failing.ID,
				Status: models.RequirementStatusFailed,
			})
			addAlternative(failing, trigger.ID)
			addAlternative(trigger, failing.ID)
		}
	}
}

func addAlternative(task *models.Task, altID string) {
	for _, existing := range task.Alternatives {
		if existing == altID {
			return
		}
	}
	task.Alternatives = append(task.Alternatives, altID)
}

func statusListHas(statuses []string, want string) bool {
	for _, s := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

func mapStations(raw []gqlHideoutStation) []models.HideoutStation {
	stations := make([]models.HideoutStation, 0, len(raw))
	for _, rs := range raw {
		station := models.HideoutStation{
			ID:             rs.ID,
			Name:           rs.Name,
			NormalizedName: rs.NormalizedName,
		}
		for _, lvl := range rs.Levels {
			level := models.HideoutLevel{
				ID:    lvl.ID,
				Level: lvl.Level,
			}
			for _, req := range lvl.ItemRequirements {
				level.ItemRequirements = append(level.ItemRequirements, models.HideoutItemRequirement{
					ID:    req.ID,
					Count: req.Count,
				})
			}
			station.Levels = append(station.Levels, level)
		}
		stations = append(stations, station)
	}
	return stations
}
