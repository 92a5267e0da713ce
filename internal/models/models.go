package models

import (
	"time"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NewUser is the insert shape of a user: every column the server does not generate.
type NewUser struct {
	Name string `json:"name" validate:"required"`
}

// UserPatch carries a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name *string `json:"name,omitempty" validate:"omitnil,min=1"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil
}

type Post struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UserID    int64     `json:"userId" db:"user_id"`
}

type NewPost struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	UserID  int64  `json:"userId" validate:"required"`
}

type PostPatch struct {
	Title   *string `json:"title,omitempty" validate:"omitnil,min=1"`
	Content *string `json:"content,omitempty" validate:"omitnil,min=1"`
	UserID  *int64  `json:"userId,omitempty" validate:"omitnil,gt=0"`
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.UserID == nil
}

// ClientUserInput holds what a person types into the user form.
type ClientUserInput struct {
	Name string `json:"name" validate:"min=2"`
}

func (in ClientUserInput) NewUser() NewUser {
	return NewUser{Name: in.Name}
}

func (in ClientUserInput) Patch() UserPatch {
	name := in.Name
	return UserPatch{Name: &name}
}

// ClientPostInput holds what a person types into the post form.
type ClientPostInput struct {
	Title   string `json:"title" validate:"min=3"`
	Content string `json:"content" validate:"min=10"`
	UserID  int64  `json:"userId" validate:"gt=0"`
}

func (in ClientPostInput) NewPost() NewPost {
	return NewPost{Title: in.Title, Content: in.Content, UserID: in.UserID}
}

func (in ClientPostInput) Patch() PostPatch {
	title, content, userID := in.Title, in.Content, in.UserID
	return PostPatch{Title: &title, Content: &content, UserID: &userID}
}

type TableStats struct {
	Users int `json:"users" db:"users"`
	Posts int `json:"posts" db:"posts"`
}
