// Package community holds the hub's routine content records: blog
// posts, map points, and user profiles. These are plain CRUD data with
// no flow logic of their own.
package community

import (
	"fmt"
	"time"
)

// BlogPost is a community blog entry.
type BlogPost struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

func (b *BlogPost) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if b.Body == "" {
		return fmt.Errorf("body cannot be empty")
	}
	if b.AuthorID == "" {
		return fmt.Errorf("authorId cannot be empty")
	}
	return nil
}

// MapPoint is a pin placed on the interactive map. X and Y are
// fractional positions in [0,1] relative to the map image.
type MapPoint struct {
	ID        string    `json:"id,omitempty"`
	Label     string    `json:"label"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (p *MapPoint) Validate() error {
	if p.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
		return fmt.Errorf("coordinates must be within [0,1]")
	}
	if p.AuthorID == "" {
		return fmt.Errorf("authorId cannot be empty")
	}
	return nil
}

// Profile is a user's public profile. The user ID comes from the
// session identity supplied by the auth layer; it is the record key.
type Profile struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

func (p *Profile) Validate() error {
	if p.DisplayName == "" {
		return fmt.Errorf("displayName cannot be empty")
	}
	return nil
}
