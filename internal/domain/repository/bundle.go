package repository

import "database/sql"

// Bundle groups the repositories a request handler works with. Handlers build
// it lazily through their base accessor; tests substitute fakes per field.
type Bundle struct {
	Users     UserRepository
	Contests  ContestRepository
	Solutions SolutionRepository
}

func NewPgBundle(db *sql.DB) *Bundle {
	return &Bundle{
		Users:     NewPgUserRepository(db),
		Contests:  NewPgContestRepository(db),
		Solutions: NewPgSolutionRepository(db),
	}
}
