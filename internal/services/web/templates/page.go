// Package templates renders the HTML shell that hosts the alert container.
package templates

import "strings"

// DefaultTitle is used when PageContext.Title is empty.
const DefaultTitle = "Room"

// PageContext provides the values the page shell renders.
type PageContext struct {
	Lang  string
	Title string
	// ContainerID is the id of the empty alert container element.
	ContainerID string
	// ClientAlerts loads the WebAssembly presenter from StaticPrefix.
	ClientAlerts bool
	StaticPrefix string
}

func (p PageContext) lang() string {
	if lang := strings.TrimSpace(p.Lang); lang != "" {
		return lang
	}
	return "en"
}

func (p PageContext) title() string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return title
	}
	return DefaultTitle
}

func (p PageContext) staticPrefix() string {
	if prefix := strings.TrimRight(strings.TrimSpace(p.StaticPrefix), "/"); prefix != "" {
		return prefix
	}
	return "/static"
}
