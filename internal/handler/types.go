package handler

import "tracker-server/internal/models"

type updateTaskRequest struct {
	State string `json:"state" binding:"required"`
}

type updateObjectiveRequest struct {
	State *string `json:"state,omitempty"`
	Count *int    `json:"count,omitempty"`
}

type createTokenRequest struct {
	Note        string   `json:"note"`
	Permissions []string `json:"permissions" binding:"required"`
}

type joinTeamRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type hideTeammatesRequest struct {
	Users []string `json:"users"`
}

type selfMeta struct {
	Self string `json:"self"`
}

// teamMeta echoes the viewer's hide list so clients can render the
// filtered-out teammates without a second request.
type teamMeta struct {
	Self            string   `json:"self"`
	HiddenTeammates []string `json:"hiddenTeammates"`
}

type progressResponse struct {
	Data *models.FormattedProgress `json:"data"`
	Meta selfMeta                  `json:"meta"`
}

type teamProgressResponse struct {
	Data []*models.FormattedProgress `json:"data"`
	Meta teamMeta                    `json:"meta"`
}

type tokenListResponse struct {
	Tokens []models.APIToken `json:"tokens"`
}

type teamResponse struct {
	Team    *models.Team        `json:"team"`
	Members []models.TeamMember `json:"members"`
}

type messageResponse struct {
	Message string `json:"message"`
}
