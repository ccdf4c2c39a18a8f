package dto

type CreateTeamRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	MemberUIDs  []string `json:"memberUIDs" binding:"required"`
}
