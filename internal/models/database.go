package models

// GORM models

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringArray maps to a PostgreSQL text[] column.
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		quoted[i] = `"` + v + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}", nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		parsed, err := parseTextArray(v)
		if err != nil {
			return err
		}
		*s = parsed
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// parseTextArray decodes the one-dimensional array literal Postgres returns
// for text[] columns.
func parseTextArray(literal string) (StringArray, error) {
	if len(literal) < 2 || literal[0] != '{' || literal[len(literal)-1] != '}' {
		return nil, fmt.Errorf("invalid array literal: %q", literal)
	}
	body := literal[1 : len(literal)-1]
	out := StringArray{}
	if body == "" {
		return out, nil
	}

	var (
		current  strings.Builder
		inQuotes bool
		escaped  bool
	)
	for _, r := range body {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			out = append(out, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if inQuotes || escaped {
		return nil, fmt.Errorf("unterminated array literal: %q", literal)
	}
	return append(out, current.String()), nil
}

// Mood recorded against a meal.
const (
	MoodHappy   = "happy"
	MoodNeutral = "neutral"
	MoodSad     = "sad"
)

var validMoods = map[string]bool{
	"":          true,
	MoodHappy:   true,
	MoodNeutral: true,
	MoodSad:     true,
}

const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MealEntry is stored as JSON inside the check-in row.
type MealEntry struct {
	Mood string `json:"mood"`
	Food string `json:"food"`
}

// CheckIn is one daily health journal entry.
type CheckIn struct {
	ID        string      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string      `json:"userId" gorm:"not null;index"`
	Date      string      `json:"date" gorm:"type:varchar(10);not null;index"`
	Breakfast MealEntry   `json:"breakfast" gorm:"type:jsonb;serializer:json"`
	Lunch     MealEntry   `json:"lunch" gorm:"type:jsonb;serializer:json"`
	Dinner    MealEntry   `json:"dinner" gorm:"type:jsonb;serializer:json"`
	Symptoms  StringArray `json:"symptoms" gorm:"type:text[]"`
	Progress  int         `json:"progress" gorm:"not null;default:0;check:progress BETWEEN 0 AND 10"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Meals returns the three meal entries in day order.
func (c CheckIn) Meals() map[string]MealEntry {
	return map[string]MealEntry{
		"breakfast": c.Breakfast,
		"lunch":     c.Lunch,
		"dinner":    c.Dinner,
	}
}

type ProfileFlags struct {
	Senior   bool `json:"senior" gorm:"default:false"`
	Athlete  bool `json:"athlete" gorm:"default:false"`
	Pregnant bool `json:"pregnant" gorm:"default:false"`
	Anorexia bool `json:"anorexia" gorm:"default:false"`
}

// Profile holds the personal details a user keeps on file.
type Profile struct {
	UserID    string       `json:"userId" gorm:"primaryKey"`
	FirstName string       `json:"firstName" gorm:"not null"`
	LastName  string       `json:"lastName" gorm:"not null"`
	Email     string       `json:"email" gorm:"not null"`
	Phone     string       `json:"phone" gorm:"not null"`
	Address   string       `json:"address" gorm:"not null"`
	Flags     ProfileFlags `json:"flags" gorm:"embedded;embeddedPrefix:flag_"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"uniqueIndex;not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type CheckInRepository interface {
	Create(checkIn *CheckIn) error
	GetByID(userID, id string) (*CheckIn, error)
	ListByUser(userID string, from, to string) ([]CheckIn, error)
}

type ProfileRepository interface {
	GetByUserID(userID string) (*Profile, error)
	Upsert(profile *Profile) error
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
	GetUnhealthyServices() ([]SystemHealth, error)
}

func (CheckIn) TableName() string      { return "check_ins" }
func (Profile) TableName() string      { return "profiles" }
func (SystemHealth) TableName() string { return "system_health" }

func (c *CheckIn) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", c.Date)
	}
	if c.Progress < 0 || c.Progress > 10 {
		return fmt.Errorf("progress must be between 0 and 10")
	}
	for meal, entry := range c.Meals() {
		if !validMoods[entry.Mood] {
			return fmt.Errorf("invalid %s mood: %s", meal, entry.Mood)
		}
	}
	return nil
}

func (p *Profile) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("last name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("invalid email format")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("phone number is required")
	}
	if strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

// GORM hooks
func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Symptoms == nil {
		c.Symptoms = StringArray{}
	}
	return c.Validate()
}

func (p *Profile) BeforeSave(tx *gorm.DB) error {
	return p.Validate()
}
