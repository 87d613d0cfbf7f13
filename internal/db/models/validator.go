package models

import "time"

type Validator struct {
	ID             int       `json:"id" pg:",pk"`
	Address        string    `json:"address" pg:",notnull,unique"`
	IsRegistered   bool      `json:"is_registered" pg:",use_zero"`
	IsVotingMember bool      `json:"is_voting_member" pg:",use_zero"`
	RegisteredAt   time.Time `json:"registered_at"`
}
