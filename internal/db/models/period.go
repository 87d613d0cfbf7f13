package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type PeriodName string

const (
	PeriodNameApplication PeriodName = "application"
	PeriodNameVoting      PeriodName = "voting"
)

func (p PeriodName) String() string {
	return string(p)
}

func (p PeriodName) Next() PeriodName {
	if p == PeriodNameVoting {
		return PeriodNameApplication
	}
	return PeriodNameVoting
}

func (p PeriodName) CapitalizedString() string {
	return cases.Title(language.English).String(p.String()) + " Period"
}

const PeriodRowID = 1

type Period struct {
	tableName struct{} `pg:"periods"`

	ID             int        `json:"-" pg:",pk"`
	Name           PeriodName `json:"period_name" pg:",notnull"`
	SequenceNumber uint64     `json:"sequence_number" pg:",use_zero"`
	StartedAtBlock uint64     `json:"started_at_block" pg:",use_zero"`
}
