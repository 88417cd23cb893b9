// Package tui renders the interactive ask session. It is a driving
// adapter: the views reach the core exclusively through the Ports
// aggregate, never through concrete services.
package tui

import (
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// Ports bundles the services the session draws on. Only Query is
// required; a nil Document or Settings leaves the matching view showing
// a placeholder instead of failing.
type Ports struct {
	Query    driving.QueryService    // answers questions against the corpus
	Document driving.DocumentService // backs the document browser
	Settings driving.SettingsService // provider details for the status bar
}

// Validate reports whether the aggregate can drive a session.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
