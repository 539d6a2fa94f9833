package model

import "time"

// User represents an application user record as stored in the `users`
// table.  PasswordHash holds the bcrypt digest; the plaintext password is
// hashed once inside UserRepo.Create and never persisted or returned.
// Unique indexes on username and email back the registration checks.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name, minimum three characters.
//  Email        – unique email address, stored lowercased.
//  PasswordHash – bcrypt hashed password.
//  ProfileImage – URL of the user's avatar.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    ProfileImage string    // users.profile_image
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the subset of user attributes safe to return to clients.
// It never includes the password hash.
type PublicUser struct {
    ID           uint64 `json:"id"`
    Username     string `json:"username"`
    Email        string `json:"email"`
    ProfileImage string `json:"profileImage"`
}

// Public converts a stored user into its client-facing view.
func (u User) Public() PublicUser {
    return PublicUser{
        ID:           u.ID,
        Username:     u.Username,
        Email:        u.Email,
        ProfileImage: u.ProfileImage,
    }
}
