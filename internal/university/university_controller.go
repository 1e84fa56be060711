package university

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchside/uct-api/pkg/apperrors"
	"github.com/pitchside/uct-api/pkg/responses"
)

// UniversityController handles API requests related to universities.
type UniversityController struct {
	repo UniversityRepository
}

func NewUniversityController(repo UniversityRepository) *UniversityController {
	return &UniversityController{repo: repo}
}

type CreateUniversityRequest struct {
	Name         string `json:"name" binding:"required,min=3,max=256"`
	Location     string `json:"location" binding:"omitempty,max=256"`
	Address      string `json:"address" binding:"omitempty,max=512"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=32"`
	LogoURL      string `json:"logo_url" binding:"omitempty,url"`
}

type UpdateUniversityRequest struct {
	Name         string `json:"name" binding:"omitempty,min=3,max=256"`
	Location     string `json:"location" binding:"omitempty,max=256"`
	Address      string `json:"address" binding:"omitempty,max=512"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=32"`
	LogoURL      string `json:"logo_url" binding:"omitempty,url"`
}

// CreateUniversity godoc
// @Summary Create a university
// @Description Admin registers a new participating university
// @Tags Universities
// @Accept json
// @Produce json
// @Param university body CreateUniversityRequest true "University payload"
// @Success 201 {object} responses.SuccessResponse{data=University}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse "Name already registered"
// @Router /admin/universities [post]
// @Security BearerAuth
func (uc *UniversityController) CreateUniversity(c *gin.Context) {
	var req CreateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	u := University{
		Name:         req.Name,
		Location:     req.Location,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		LogoURL:      req.LogoURL,
	}
	if err := uc.repo.Create(&u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			responses.SendError(c, apperrors.Conflict("university with this name already exists"))
			return
		}
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendCreated(c, "University created successfully", u)
}

// GetUniversities godoc
// @Summary List universities
// @Tags Universities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(10)
// @Param search query string false "Search by name or location"
// @Success 200 {object} responses.PaginatedResponse{data=[]University}
// @Router /universities [get]
func (uc *UniversityController) GetUniversities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	search := c.Query("search")

	universities, total, err := uc.repo.List(page, pageSize, search)
	if err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendPaginated(c, "Universities retrieved successfully", universities, total, page, pageSize)
}

// GetUniversity godoc
// @Summary Get a university by ID
// @Tags Universities
// @Produce json
// @Param id path int true "University ID"
// @Success 200 {object} responses.SuccessResponse{data=University}
// @Failure 404 {object} responses.ErrorResponse
// @Router /universities/{id} [get]
func (uc *UniversityController) GetUniversity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid university id"))
		return
	}
	u, err := uc.repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.SendError(c, apperrors.NotFound("university not found"))
			return
		}
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", u)
}

// UpdateUniversity godoc
// @Summary Update a university
// @Tags Universities
// @Accept json
// @Produce json
// @Param id path int true "University ID"
// @Param university body UpdateUniversityRequest true "Fields to update"
// @Success 200 {object} responses.SuccessResponse{data=University}
// @Failure 404 {object} responses.ErrorResponse
// @Router /admin/universities/{id} [put]
// @Security BearerAuth
func (uc *UniversityController) UpdateUniversity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid university id"))
		return
	}
	var req UpdateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	u, err := uc.repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.SendError(c, apperrors.NotFound("university not found"))
			return
		}
		responses.SendError(c, apperrors.Internal(err))
		return
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Location != "" {
		u.Location = req.Location
	}
	if req.Address != "" {
		u.Address = req.Address
	}
	if req.ContactEmail != "" {
		u.ContactEmail = req.ContactEmail
	}
	if req.ContactPhone != "" {
		u.ContactPhone = req.ContactPhone
	}
	if req.LogoURL != "" {
		u.LogoURL = req.LogoURL
	}

	if err := uc.repo.Update(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			responses.SendError(c, apperrors.Conflict("university with this name already exists"))
			return
		}
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "University updated successfully", u)
}

// DeleteUniversity godoc
// @Summary Delete a university
// @Tags Universities
// @Produce json
// @Param id path int true "University ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /admin/universities/{id} [delete]
// @Security BearerAuth
func (uc *UniversityController) DeleteUniversity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.SendError(c, apperrors.Validation("invalid university id"))
		return
	}
	if _, err := uc.repo.FindByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			responses.SendError(c, apperrors.NotFound("university not found"))
			return
		}
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	if err := uc.repo.Delete(uint(id)); err != nil {
		responses.SendError(c, apperrors.Internal(err))
		return
	}
	responses.SendSuccess(c, http.StatusOK, "University deleted successfully", nil)
}
