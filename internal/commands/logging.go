package commands

import (
	"strings"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

const commandModuleRoot = "onboarding.commands"

// CommandLogger returns the logger for one command family, e.g. "milestones" yields
// module onboarding.commands.milestones.
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	name := strings.TrimSpace(family)
	if name == "" {
		return logging.ModuleLogger(provider, commandModuleRoot)
	}
	return logging.WithFields(logging.ModuleLogger(provider, commandModuleRoot+"."+name), map[string]any{
		"command_family": name,
	})
}
