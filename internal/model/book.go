package model

import "time"

// Book represents a book recommendation post in the `books` table.  Every
// post belongs to exactly one user; Image holds the public URL of the
// uploaded cover on the object store.
type Book struct {
    ID        uint64    `json:"id"`        // books.id
    Title     string    `json:"title"`     // books.title
    Caption   string    `json:"caption"`   // books.caption
    Rating    int       `json:"rating"`    // books.rating (1..5)
    Image     string    `json:"image"`     // books.image (public URL)
    UserID    uint64    `json:"userId"`    // books.user_id (owner)
    CreatedAt time.Time `json:"createdAt"` // books.created_at
    UpdatedAt time.Time `json:"updatedAt"` // books.updated_at
}

// BookOwner is the partial owner projection attached to feed items.  Only
// the username and avatar are exposed, nothing else about the owner.
type BookOwner struct {
    Username     string `json:"username"`
    ProfileImage string `json:"profileImage"`
}

// FeedItem is a book post augmented with its owner projection, as returned
// by the paginated feed.
type FeedItem struct {
    Book
    User BookOwner `json:"user"`
}
