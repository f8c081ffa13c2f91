package users

import (
	"time"

	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess/dbsqlc"
	"gitlab.com/navyx/nexus/nexus-users/pkg/util"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email,max=320"`
	Name  string `json:"name" validate:"required,max=200"`
}

type ListUsersResponse struct {
	Users  []*User `json:"users"`
	Total  int64   `json:"total"`
	Limit  int32   `json:"limit"`
	Offset int32   `json:"offset"`
}

func userFromRecord(rec *dbsqlc.User) *User {
	return &User{
		ID:        util.MustPgtypeUUIDToString(rec.ID),
		Email:     rec.Email,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt.Time,
		UpdatedAt: rec.UpdatedAt.Time,
	}
}
