package player

import "gorm.io/gorm"

type PlayerRepository interface {
	Create(p *Player) error
	FindByID(id uint) (*Player, error)
	FindByEmail(email string) (*Player, error)
	Update(p *Player) error
	JerseyTaken(universityID uint, jerseyNumber int, excludePlayerID uint) (bool, error)
}

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(p *Player) error {
	return r.db.Create(p).Error
}

func (r *playerRepository) FindByID(id uint) (*Player, error) {
	var p Player
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playerRepository) FindByEmail(email string) (*Player, error) {
	var p Player
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playerRepository) Update(p *Player) error {
	return r.db.Save(p).Error
}

// JerseyTaken reports whether another player of the same university already
// wears the number.
func (r *playerRepository) JerseyTaken(universityID uint, jerseyNumber int, excludePlayerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Player{}).
		Where("university_id = ? AND jersey_number = ? AND id <> ?",
			universityID, jerseyNumber, excludePlayerID).
		Count(&count).Error
	return count > 0, err
}
