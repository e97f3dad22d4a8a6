package domain

import "time"

// Post is a blog entry owned by exactly one author. Categories carry the
// resolved many-to-many association when a post is loaded through the
// service layer.
type Post struct {
	ID        string
	Title     string
	Slug      string
	Content   string
	ImageURL  string
	Published bool
	Featured  bool
	Order     int
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time

	Author     *User
	Categories []Category
}

// Category groups posts. PostCount is computed at query time, never stored.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	PostCount   int
}
