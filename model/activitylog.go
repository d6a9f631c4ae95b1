package model

import "github.com/cdfmlr/crud/orm"

// ActivityLog is one row of the persisted activity feed shown on the
// frontend Logs page. Kept in the relational store, not the search
// index: log rows are never full-text searched.
type ActivityLog struct {
	orm.BasicModel

	Level    string
	Event    string
	FileName string
	DocID    string
	Detail   string
}
