package model

type UserRole string

const (
	RoleUser UserRole = "user"
	Admin    UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	FirstName string   `gorm:"size:100" json:"firstName"`
	LastName  string   `gorm:"size:100" json:"lastName"`
	Email     string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	Role      UserRole `gorm:"size:20;default:'user'" json:"role"`
	ContactNo string   `gorm:"size:30" json:"contactNo"`
	Address   string   `gorm:"size:255" json:"address"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == Admin
}
