package repository

import (
	"errors"
	"time"

	"github.com/healthbite/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CheckInRepositoryImpl implements CheckInRepository
type CheckInRepositoryImpl struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) models.CheckInRepository {
	return &CheckInRepositoryImpl{db: db}
}

func (r *CheckInRepositoryImpl) Create(checkIn *models.CheckIn) error {
	return r.db.Create(checkIn).Error
}

func (r *CheckInRepositoryImpl) GetByID(userID, id string) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&checkIn).Error
	if err != nil {
		return nil, translate(err)
	}
	return &checkIn, nil
}

// ListByUser returns the user's check-ins oldest first. Empty bounds are
// open.
func (r *CheckInRepositoryImpl) ListByUser(userID string, from, to string) ([]models.CheckIn, error) {
	query := r.db.Where("user_id = ?", userID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}

	var checkIns []models.CheckIn
	err := query.Order("date ASC").Order("created_at ASC").Find(&checkIns).Error
	return checkIns, err
}

// ProfileRepositoryImpl implements ProfileRepository
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) models.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) GetByUserID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// Upsert writes every profile field, keeping the original created_at.
func (r *ProfileRepositoryImpl) Upsert(profile *models.Profile) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "phone", "address",
			"flag_senior", "flag_athlete", "flag_pregnant", "flag_anorexia",
			"updated_at",
		}),
	}).Create(profile).Error
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	row := models.SystemHealth{
		ServiceName:    serviceName,
		Status:         status,
		ResponseTimeMs: responseTime,
		ErrorMessage:   errorMsg,
		CheckedAt:      time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "service_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "response_time_ms", "error_message", "checked_at"}),
	}).Create(&row).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).First(&health).Error
	if err != nil {
		return nil, translate(err)
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Order("service_name").Find(&health).Error
	return health, err
}

func (r *SystemHealthRepositoryImpl) GetUnhealthyServices() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Where("status <> ?", "healthy").
		Order("service_name").
		Find(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	CheckIn      models.CheckInRepository
	Profile      models.ProfileRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		CheckIn:      NewCheckInRepository(db),
		Profile:      NewProfileRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
