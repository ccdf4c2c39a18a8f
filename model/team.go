package model

import "time"

const MinTeamMembers = 2

// Team membership is replaced as a whole set; ManagerUID is not required to
// be one of MemberUIDs.
type Team struct {
	UID         string    `json:"uid" firestore:"-"`
	Name        string    `json:"name" firestore:"name" validate:"required"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	ManagerUID  string    `json:"managerUID" firestore:"managerUID" validate:"required"`
	MemberUIDs  []string  `json:"memberUIDs" firestore:"memberUIDs" validate:"min=2,unique,dive,required"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

func (t Team) Key() string {
	return t.UID
}

func (t Team) HasMember(uid string) bool {
	for _, member := range t.MemberUIDs {
		if member == uid {
			return true
		}
	}
	return false
}

// TeamPatch carries the fields of a team update. Nil fields are left untouched.
type TeamPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	MemberUIDs  *[]string `json:"memberUIDs,omitempty"`
}
