package model

// swagger:model Subject
type Subject struct {
	UUIDBase
	Subject string `gorm:"size:255;not null;index" json:"subject"`
}

func (Subject) TableName() string {
	return "subjects"
}

// System 科目下的系统分组，例如 "Cardiovascular"
// swagger:model System
type System struct {
	UUIDBase
	SubjectID         string   `gorm:"index;type:varchar(36);not null" json:"subjectId"`
	Subject           *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	SystemName        string   `gorm:"size:255;not null" json:"systemName"`
	SystemDescription string   `gorm:"type:text" json:"systemDescription"`
}

func (System) TableName() string {
	return "systems"
}

// SubSystem 的 SubjectID 始终取自所属系统
// swagger:model SubSystem
type SubSystem struct {
	UUIDBase
	Name        string   `gorm:"size:255;not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	SubjectID   string   `gorm:"index;type:varchar(36);not null" json:"subjectId"`
	Subject     *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	SystemID    string   `gorm:"index;type:varchar(36);not null" json:"systemId"`
	System      *System  `gorm:"foreignKey:SystemID" json:"system,omitempty"`
}

func (SubSystem) TableName() string {
	return "sub_systems"
}
