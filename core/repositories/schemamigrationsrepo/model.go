package schemamigrationsrepo

import "time"

// SchemaMigration is a migration recorded as applied.
type SchemaMigration struct {
	Version   string    `db:"version" json:"version"`
	Checksum  string    `db:"checksum" json:"checksum"`
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
}

// State is where a migration file stands against the database.
type State string

// Set of states.
const (
	StatePending State = "pending"
	StateApplied State = "applied"
	StateDrifted State = "drifted"
	StateMissing State = "missing"
)

// Status pairs a migration version with its state.
type Status struct {
	Version   string     `json:"version"`
	State     State      `json:"state"`
	Checksum  string     `json:"checksum"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}
