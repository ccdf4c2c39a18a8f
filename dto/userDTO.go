package dto

import (
	"checklistapp/model"
	"checklistapp/views"
)

type UserResponse struct {
	UID         string     `json:"uid"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	TeamUIDs    []string   `json:"teamUIDs"`
	Initials    string     `json:"initials"`
	AvatarColor string     `json:"avatarColor"`
}

func NewUserResponse(u model.User) UserResponse {
	teams := u.TeamUIDs
	if teams == nil {
		teams = []string{}
	}
	return UserResponse{
		UID:         u.UID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		TeamUIDs:    teams,
		Initials:    views.Initials(u.Name),
		AvatarColor: views.AvatarColor(u.UID, views.AvatarColors),
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

type UpdateProfileRequest struct {
	Name string     `json:"name" binding:"required"`
	Role model.Role `json:"role" binding:"required"`
}
