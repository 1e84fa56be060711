package team

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/internal/middleware"
	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/responses"
)

// TeamController handles API requests related to teams and their budgets.
type TeamController struct {
	repo TeamRepository
}

func NewTeamController(repo TeamRepository) *TeamController {
	return &TeamController{repo: repo}
}

type AddExpenseRequest struct {
	Description string  `json:"description" binding:"required,max=512"`
	Amount      float64 `json:"amount" binding:"required"`
}

type AddFundsRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// GetTeams godoc
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(10)
// @Param university_id query int false "Filter by university"
// @Success 200 {object} responses.PaginatedResponse{data=[]Team}
// @Router /teams [get]
func (tc *TeamController) GetTeams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	universityID, _ := strconv.ParseUint(c.DefaultQuery("university_id", "0"), 10, 64)

	teams, total, err := tc.repo.GetAllTeams(page, pageSize, uint(universityID))
	if err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendPaginated(c, "Teams retrieved successfully", teams, total, page, pageSize)
}

// GetTeam godoc
// @Summary Get a team with its roster
// @Tags Teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{id} [get]
func (tc *TeamController) GetTeam(c *gin.Context) {
	team, ok := tc.loadTeam(c)
	if !ok {
		return
	}
	roster, err := tc.repo.GetRoster(team.ID)
	if err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", gin.H{
		"team":   team,
		"roster": roster,
	})
}

// AddExpense godoc
// @Summary Record a team expense
// @Description Captain debits the team budget. Rejected when the amount is
// not positive or exceeds the available budget.
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param expense body AddExpenseRequest true "Expense payload"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{id}/expenses [post]
// @Security BearerAuth
func (tc *TeamController) AddExpense(c *gin.Context) {
	team, ok := tc.loadOwnTeam(c)
	if !ok {
		return
	}
	var req AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := team.AddExpense(req.Description, req.Amount, time.Now()); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := tc.repo.UpdateTeam(team); err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Expense recorded", team)
}

// AddFunds godoc
// @Summary Credit the team budget
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param funds body AddFundsRequest true "Funds payload"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /teams/{id}/funds [post]
// @Security BearerAuth
func (tc *TeamController) AddFunds(c *gin.Context) {
	team, ok := tc.loadOwnTeam(c)
	if !ok {
		return
	}
	var req AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := team.AddFunds(req.Amount); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := tc.repo.UpdateTeam(team); err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Funds added", team)
}

func (tc *TeamController) loadTeam(c *gin.Context) (*Team, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid team id"))
		return nil, false
	}
	team, err := tc.repo.GetTeamByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.SendError(c, apperrors.NotFound("team not found"))
			return nil, false
		}
		responses.SendError(c, apperrors.Internal(err))
		return nil, false
	}
	return team, true
}

// loadOwnTeam loads the team and checks the acting player is its captain
// (admins pass too).
func (tc *TeamController) loadOwnTeam(c *gin.Context) (*Team, bool) {
	team, ok := tc.loadTeam(c)
	if !ok {
		return nil, false
	}
	playerID, err := middleware.PlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, apperrors.Unauthorized("authentication required"))
		return nil, false
	}
	role := c.GetString(middleware.AuthPlayerRoleKey)
	if team.CaptainID != playerID && role != "admin" {
		responses.SendError(c, apperrors.Forbidden("only the team captain can manage the budget"))
		return nil, false
	}
	return team, true
}
