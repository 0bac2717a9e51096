package cli

import (
	"os"
	"os/user"
)

const descriptionPrefix = "Published by CLI user: "

// sessionDescription names the local user in the server's session list.
func sessionDescription() string {
	return descriptionPrefix + currentUser()
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}

	return "unknown"
}
