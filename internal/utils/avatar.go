package utils

import "net/url"

// AvatarURL returns the deterministic default avatar for a username.  The
// dicebear API renders the same image for the same seed, so a user keeps
// their avatar without us storing anything beyond the URL.
func AvatarURL(username string) string {
	return "https://api.dicebear.com/9.x/avataaars/svg?seed=" + url.QueryEscape(username)
}
