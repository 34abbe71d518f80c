package model

// Position is a simple lookup row (job title). New rows start active.
type Position struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
