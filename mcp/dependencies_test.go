package mcp

import (
	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/logging"
	"github.com/ludo-technologies/yieldscan/service"
)

func NewTestDependencies(fr domain.FileReader, path string) *Dependencies {
	return &Dependencies{
		fileReader: fr,
		configPath: path,
		cache:      service.NewParseCache(),
		logger:     logging.Nop(),
	}
}
