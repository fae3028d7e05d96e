package config

import (
	"github.com/kakamessi99/RecordServiceClient/internal/credentials"
	"github.com/kakamessi99/RecordServiceClient/internal/task"
)

// Model is the unified representation of everything a loader produced.
type Model struct {
	Settings    Values
	Credentials *credentials.Set
	Tasks       []*task.Descriptor
}

// NewModel returns an empty, ready to fill Model.
func NewModel() *Model {
	return &Model{
		Settings:    Values{},
		Credentials: credentials.NewSet(),
	}
}
