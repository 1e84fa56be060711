package team

import "gorm.io/gorm"

// TeamRepository defines the interface for team data operations.
type TeamRepository interface {
	CreateTeam(team *Team) error
	GetTeamByID(id uint) (*Team, error)
	GetTeamByName(name string) (*Team, error)
	GetAllTeams(page, limit int, universityID uint) ([]Team, int64, error)
	UpdateTeam(team *Team) error
	DeleteTeam(id uint) error

	AddTeamPlayer(tp *TeamPlayer) error
	GetRoster(teamID uint) ([]TeamPlayer, error)
	RemoveTeamPlayer(teamID, playerID uint) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of TeamRepository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) CreateTeam(team *Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepository) GetTeamByID(id uint) (*Team, error) {
	var t Team
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetTeamByName(name string) (*Team, error) {
	var t Team
	if err := r.db.Where("name = ?", name).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetAllTeams(page, limit int, universityID uint) ([]Team, int64, error) {
	var teams []Team
	var total int64

	query := r.db.Model(&Team{})
	if universityID != 0 {
		query = query.Where("university_id = ?", universityID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	err := query.Order("points DESC, name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&teams).Error
	return teams, total, err
}

func (r *teamRepository) UpdateTeam(team *Team) error {
	return r.db.Save(team).Error
}

func (r *teamRepository) DeleteTeam(id uint) error {
	return r.db.Delete(&Team{}, id).Error
}

func (r *teamRepository) AddTeamPlayer(tp *TeamPlayer) error {
	return r.db.Create(tp).Error
}

func (r *teamRepository) GetRoster(teamID uint) ([]TeamPlayer, error) {
	var roster []TeamPlayer
	err := r.db.Where("team_id = ?", teamID).Find(&roster).Error
	return roster, err
}

func (r *teamRepository) RemoveTeamPlayer(teamID, playerID uint) error {
	return r.db.Where("team_id = ? AND player_id = ?", teamID, playerID).
		Delete(&TeamPlayer{}).Error
}
