package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the demographic sheet captured at registration. The record
// core only ever reads it; mutation belongs to the registration flow.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"-"`

	Name   string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email  string `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Phone  string `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Age    int    `gorm:"column:age" json:"age"`
	Gender string `gorm:"column:gender;type:varchar(20)" json:"gender,omitempty"`

	// Optional vitals; the register form leaves these blank more often
	// than not.
	BloodGroup string `gorm:"column:blood_group;type:varchar(5)" json:"blood_group,omitempty"`
	Weight     string `gorm:"column:weight;type:varchar(20)" json:"weight,omitempty"`
	Height     string `gorm:"column:height;type:varchar(20)" json:"height,omitempty"`
}

func (Profile) TableName() string {
	return "clinical.profiles"
}
