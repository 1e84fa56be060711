package university

import "gorm.io/gorm"

type UniversityRepository interface {
	Create(u *University) error
	FindByID(id uint) (*University, error)
	FindByName(name string) (*University, error)
	List(page, pageSize int, search string) ([]University, int64, error)
	Update(u *University) error
	Delete(id uint) error
}

type universityRepository struct {
	db *gorm.DB
}

func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &universityRepository{db: db}
}

func (r *universityRepository) Create(u *University) error {
	return r.db.Create(u).Error
}

func (r *universityRepository) FindByID(id uint) (*University, error) {
	var u University
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *universityRepository) FindByName(name string) (*University, error) {
	var u University
	if err := r.db.Where("name = ?", name).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *universityRepository) List(page, pageSize int, search string) ([]University, int64, error) {
	var universities []University
	var total int64

	query := r.db.Model(&University{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR location ILIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	err := query.Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&universities).Error
	return universities, total, err
}

func (r *universityRepository) Update(u *University) error {
	return r.db.Save(u).Error
}

func (r *universityRepository) Delete(id uint) error {
	return r.db.Delete(&University{}, id).Error
}
