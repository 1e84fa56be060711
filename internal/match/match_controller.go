package match

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/internal/team"
	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/responses"
)

// MatchController handles match-related HTTP requests.
type MatchController struct {
	repo     MatchRepository
	teamRepo team.TeamRepository
}

func NewMatchController(repo MatchRepository, teamRepo team.TeamRepository) *MatchController {
	return &MatchController{repo: repo, teamRepo: teamRepo}
}

type CreateMatchRequest struct {
	Title          string    `json:"title" binding:"required,min=3,max=256"`
	Team1ID        uint      `json:"team1_id" binding:"required"`
	Team2ID        uint      `json:"team2_id" binding:"required"`
	Date           time.Time `json:"date" binding:"required"`
	Location       string    `json:"location" binding:"omitempty,max=256"`
	TotalOvers     int       `json:"total_overs" binding:"omitempty,min=1,max=50"`
	InningsPerTeam int       `json:"innings_per_team" binding:"omitempty,min=1,max=2"`
	Team1PlayingXI []uint    `json:"team1_playing_xi" binding:"omitempty,max=11"`
	Team2PlayingXI []uint    `json:"team2_playing_xi" binding:"omitempty,max=11"`
}

type TossRequest struct {
	WonBy    uint   `json:"won_by" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=bat bowl"`
}

type RecordBallRequest struct {
	OverNumber    int            `json:"over_number" binding:"required,min=1"`
	BallNumber    int            `json:"ball_number" binding:"required,min=1,max=6"`
	BatsmanID     uint           `json:"batsman_id" binding:"required"`
	BowlerID      uint           `json:"bowler_id" binding:"required"`
	Runs          int            `json:"runs" binding:"omitempty,min=0,max=7"`
	ExtraType     *ExtraType     `json:"extra_type" binding:"omitempty"`
	IsWicket      bool           `json:"is_wicket"`
	DismissalType *DismissalType `json:"dismissal_type" binding:"omitempty"`
	PlayerOutID   *uint          `json:"player_out_id" binding:"omitempty"`
	FielderIDs    []uint         `json:"fielder_ids" binding:"omitempty"`
	Commentary    string         `json:"commentary" binding:"omitempty,max=1024"`
}

type MatchStateRequest struct {
	IsTimeout    *bool   `json:"is_timeout"`
	IsDrinkBreak *bool   `json:"is_drink_break"`
	IsLunchBreak *bool   `json:"is_lunch_break"`
	IsPowerPlay  *bool   `json:"is_power_play"`
	Message      *string `json:"message" binding:"omitempty,max=512"`
}

type FinishMatchRequest struct {
	WinnerTeamID    *uint `json:"winner_team_id"`
	ManOfTheMatchID *uint `json:"man_of_the_match_id"`
}

// CreateMatch godoc
// @Summary Schedule a match between two teams
// @Tags Matches
// @Accept json
// @Produce json
// @Param match body CreateMatchRequest true "Match payload"
// @Success 201 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse "Teams must differ"
// @Router /matches [post]
// @Security BearerAuth
func (mc *MatchController) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if req.Team1ID == req.Team2ID {
		responses.SendError(c, apperrors.Validation("a team cannot play against itself"))
		return
	}
	for _, id := range []uint{req.Team1ID, req.Team2ID} {
		if _, err := mc.teamRepo.GetTeamByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.SendError(c, apperrors.NotFound("team not found"))
				return
			}
			responses.SendError(c, apperrors.Internal(err))
			return
		}
	}

	format := Format{TotalOvers: 20, InningsPerTeam: 1}
	if req.TotalOvers > 0 {
		format.TotalOvers = req.TotalOvers
	}
	if req.InningsPerTeam > 0 {
		format.InningsPerTeam = req.InningsPerTeam
	}

	m := Match{
		Title:          req.Title,
		Team1ID:        req.Team1ID,
		Team2ID:        req.Team2ID,
		Date:           req.Date,
		Location:       req.Location,
		Format:         format,
		Status:         StatusUpcoming,
		Innings:        InningsList{},
		Team1PlayingXI: UintList(req.Team1PlayingXI),
		Team2PlayingXI: UintList(req.Team2PlayingXI),
	}
	if err := mc.repo.CreateMatch(&m); err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendCreated(c, "Match scheduled successfully", m)
}

// GetMatches godoc
// @Summary List matches
// @Tags Matches
// @Produce json
// @Param status query string false "Filter by status"
// @Param team_id query int false "Filter by team"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Match}
// @Router /matches [get]
func (mc *MatchController) GetMatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	teamID, _ := strconv.ParseUint(c.DefaultQuery("team_id", "0"), 10, 64)
	status := MatchStatus(c.Query("status"))

	matches, total, err := mc.repo.GetMatches(status, uint(teamID), page, pageSize)
	if err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendPaginated(c, "Matches retrieved successfully", matches, total, page, pageSize)
}

// GetMatch godoc
// @Summary Get a match with its live scorecard
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 404 {object} responses.ErrorResponse
// @Router /matches/{id} [get]
func (mc *MatchController) GetMatch(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", m)
}

// RecordToss godoc
// @Summary Record the toss result
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param toss body TossRequest true "Toss payload"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Router /matches/{id}/toss [post]
// @Security BearerAuth
func (mc *MatchController) RecordToss(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	var req TossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := m.RecordToss(req.WonBy, req.Decision); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := mc.repo.UpdateMatch(m); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Toss recorded", m)
}

// StartMatch godoc
// @Summary Start the match and open the first innings
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse "Toss not recorded yet"
// @Router /matches/{id}/start [post]
// @Security BearerAuth
func (mc *MatchController) StartMatch(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	if err := m.Start(); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := mc.repo.UpdateMatch(m); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match started", m)
}

// RecordBall godoc
// @Summary Record one delivery
// @Description Applies the delivery to the live innings, appends the
// immutable ball event and updates player stats in one transaction.
// Re-submitting the same (over, ball) answers 409 without double counting.
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param ball body RecordBallRequest true "Delivery payload"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse "Duplicate delivery or concurrent update"
// @Router /matches/{id}/balls [post]
// @Security BearerAuth
func (mc *MatchController) RecordBall(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	var req RecordBallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	ball := BallEvent{
		OverNumber:    req.OverNumber,
		BallNumber:    req.BallNumber,
		BatsmanID:     req.BatsmanID,
		BowlerID:      req.BowlerID,
		Runs:          req.Runs,
		ExtraType:     req.ExtraType,
		IsWicket:      req.IsWicket,
		DismissalType: req.DismissalType,
		PlayerOutID:   req.PlayerOutID,
		FielderIDs:    UintList(req.FielderIDs),
		Commentary:    req.Commentary,
	}
	if err := m.ApplyBall(&ball); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := mc.repo.SaveBall(m, &ball); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendCreated(c, "Delivery recorded", gin.H{
		"ball":  ball,
		"match": m,
	})
}

// UpdateState godoc
// @Summary Update live match state flags
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param state body MatchStateRequest true "State flags"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Router /matches/{id}/state [put]
// @Security BearerAuth
func (mc *MatchController) UpdateState(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	var req MatchStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if req.IsTimeout != nil {
		m.State.IsTimeout = *req.IsTimeout
	}
	if req.IsDrinkBreak != nil {
		m.State.IsDrinkBreak = *req.IsDrinkBreak
	}
	if req.IsLunchBreak != nil {
		m.State.IsLunchBreak = *req.IsLunchBreak
	}
	if req.IsPowerPlay != nil {
		m.State.IsPowerPlay = *req.IsPowerPlay
	}
	if req.Message != nil {
		m.State.Message = *req.Message
	}
	if err := mc.repo.UpdateMatch(m); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match state updated", m)
}

// EndInnings godoc
// @Summary Close the current innings by declaration
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Router /matches/{id}/end-innings [post]
// @Security BearerAuth
func (mc *MatchController) EndInnings(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	if err := m.EndInnings(); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := mc.repo.UpdateMatch(m); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Innings closed", m)
}

// FinishMatch godoc
// @Summary Finish the match
// @Tags Matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param result body FinishMatchRequest true "Result payload"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Router /matches/{id}/finish [post]
// @Security BearerAuth
func (mc *MatchController) FinishMatch(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	var req FinishMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}
	if err := m.Finish(req.WinnerTeamID, req.ManOfTheMatchID); err != nil {
		responses.SendError(c, err)
		return
	}
	if err := mc.repo.UpdateMatch(m); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match finished", m)
}

// CancelMatch godoc
// @Summary Cancel or postpone an unstarted match
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Param action query string false "cancel or postpone" default(cancel)
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Router /matches/{id}/cancel [post]
// @Security BearerAuth
func (mc *MatchController) CancelMatch(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	if m.Status == StatusFinished || m.Status == StatusCancelled {
		responses.SendError(c, apperrors.Validation("match is already settled"))
		return
	}
	if c.DefaultQuery("action", "cancel") == "postpone" {
		m.Status = StatusPostponed
	} else {
		m.Status = StatusCancelled
	}
	if err := mc.repo.UpdateMatch(m); err != nil {
		responses.SendError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match updated", m)
}

// GetBalls godoc
// @Summary Ball-by-ball log for a match
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=[]BallEvent}
// @Router /matches/{id}/balls [get]
func (mc *MatchController) GetBalls(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	balls, err := mc.repo.GetBalls(m.ID)
	if err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", balls)
}

// GetStats godoc
// @Summary Per-player stats for a match
// @Description Strike and economy rates are computed on the way out, never
// stored.
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=[]StatView}
// @Router /matches/{id}/stats [get]
func (mc *MatchController) GetStats(c *gin.Context) {
	m, ok := mc.loadMatch(c)
	if !ok {
		return
	}
	stats, err := mc.repo.GetStats(m.ID)
	if err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	views := make([]StatView, 0, len(stats))
	for i := range stats {
		views = append(views, stats[i].View())
	}
	responses.SendSuccess(c, http.StatusOK, "", views)
}

func (mc *MatchController) loadMatch(c *gin.Context) (*Match, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid match id"))
		return nil, false
	}
	m, err := mc.repo.GetMatchByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.SendError(c, apperrors.NotFound("match not found"))
			return nil, false
		}
		responses.SendError(c, apperrors.Internal(err))
		return nil, false
	}
	return m, true
}
