package handlers

import (
	"log/slog"

	"github.com/rsilveira/secretary-bot/internal/config"
	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

// HandlerDeps provides dependencies for Telegram command and callback handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Pipeline *triage.Pipeline
	Selector *triage.Selector
	Resolver *triage.Resolver
	Registry *triage.Registry
}
