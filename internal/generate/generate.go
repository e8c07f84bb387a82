// Package generate provides the canonical generation pipeline for apigen.
// All execution paths (CLI, watch daemon, tests) route through Service.
package generate

import (
	"context"
	"time"

	"git.home.luguber.info/inful/apigen/internal/config"
)

// Request contains the inputs for one generation run.
type Request struct {
	// Config is the loaded configuration for this run.
	Config *config.Config

	// Options provides optional behavior modifiers.
	Options Options
}

// Options provides optional configuration for generation behavior.
type Options struct {
	// DryRun renders pages into the staging directory and discards them
	// instead of promoting the output.
	DryRun bool

	// Preview additionally writes an HTML rendering next to each page.
	Preview bool
}

// Result contains the outcome of a generation run.
type Result struct {
	Status Status `json:"status"`

	// Modules is the count of processed inventories.
	Modules int `json:"modules"`

	// Objects is the total count of documented objects across modules.
	Objects int `json:"objects"`

	// Pages is the count of pages rendered in this run.
	Pages int `json:"pages"`

	// PagesSkipped is the count of pages carried over unchanged.
	PagesSkipped int `json:"pages_skipped"`

	// Warnings counts non-fatal diagnostics, such as overloads falling
	// back to positional ids.
	Warnings int `json:"warnings"`

	Duration  time.Duration `json:"duration"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}

// Status represents the outcome of a generation run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the run completed successfully.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// Generator is the canonical interface for executing generation runs.
type Generator interface {
	Run(ctx context.Context, req Request) (*Result, error)
}
