package user

import (
	"context"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo"`
	Gender    string    `json:"gender"`
	DOB       time.Time `json:"dob"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Age in full years as of now.
func (u User) Age() int {
	return u.AgeAt(time.Now().UTC())
}

func (u User) AgeAt(now time.Time) int {
	years := now.Year() - u.DOB.Year()
	anniversary := u.DOB.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (User, bool, error)
	All(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}
