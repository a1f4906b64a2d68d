package logger

import "github.com/sirupsen/logrus"

// Component-specific loggers

// Invitations returns a logger for the add-user workflow
func Invitations() *logrus.Entry {
	return WithField("component", "invitations")
}

// Settings returns a logger for user settings access
func Settings() *logrus.Entry {
	return WithField("component", "settings")
}

// Directory returns a logger for company directory and role operations
func Directory() *logrus.Entry {
	return WithField("component", "directory")
}

// Categories returns a logger for category mutations
func Categories() *logrus.Entry {
	return WithField("component", "categories")
}

// DB returns a logger for database operations
func DB() *logrus.Entry {
	return WithField("component", "db")
}

// HTTP returns a logger for request handling
func HTTP() *logrus.Entry {
	return WithField("component", "http")
}

// CLI returns a logger for command-line operations
func CLI() *logrus.Entry {
	return WithField("component", "cli")
}
