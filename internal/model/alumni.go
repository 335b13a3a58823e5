package model

// Approval states as exposed over the API and used in list filters
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Courses the registration form accepts
var Courses = []string{
	"Computer Science",
	"Engineering",
	"Business Administration",
	"Medicine",
	"Law",
	"Arts & Humanities",
	"Science",
	"Education",
	"Other",
}

// IsKnownCourse reports whether course is in the catalogue
func IsKnownCourse(course string) bool {
	for _, c := range Courses {
		if c == course {
			return true
		}
	}
	return false
}

// Alumni self-registered alumni profile, maps to alumni.
// Approved is a tri-state: nil pending, true approved, false rejected.
type Alumni struct {
	AlumniID string `gorm:"type:uuid;primaryKey"                   json:"id"`
	Name     string `gorm:"type:varchar(100);not null"             json:"name"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone    string `gorm:"type:varchar(30);not null"              json:"phone"`
	Course   string `gorm:"type:varchar(100);not null"             json:"course"`
	Approved *bool  `gorm:"default:null"                           json:"approved"`
	BaseModel
}

// TableName table name
func (Alumni) TableName() string { return "alumni" }

// IsApproved only an explicit true counts
func (a *Alumni) IsApproved() bool {
	return a.Approved != nil && *a.Approved
}

// Status maps the tri-state to its label
func (a *Alumni) Status() string {
	switch {
	case a.Approved == nil:
		return ApprovalPending
	case *a.Approved:
		return ApprovalApproved
	default:
		return ApprovalRejected
	}
}
