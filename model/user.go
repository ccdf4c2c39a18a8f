package model

type Role string

const (
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

func (r Role) IsValid() bool {
	return r == RoleManager || r == RoleWorker
}

// User is keyed by the auth uid; the users document ID equals UID.
// TeamUIDs is derived from team membership and is not edited directly.
type User struct {
	UID      string   `json:"uid" firestore:"uid" validate:"required"`
	Email    string   `json:"email" firestore:"email" validate:"required,email"`
	Name     string   `json:"name" firestore:"name" validate:"required"`
	Role     Role     `json:"role" firestore:"role" validate:"required,oneof=manager worker"`
	TeamUIDs []string `json:"teamUIDs" firestore:"teamUIDs"`
}

func (u User) Key() string {
	return u.UID
}
