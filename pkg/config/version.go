package config

// ServiceName identifies this service in health checks and logs
const ServiceName = "company-workspace-backend"

// Version is overridden at build time with -ldflags "-X company-workspace-backend/pkg/config.Version=..."
var Version = "dev"
