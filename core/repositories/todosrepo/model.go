package todosrepo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength is the widest title the schema accepts.
const MaxTitleLength = 200

// Todo is a single todo item. ID is assigned on insert and never changes.
type Todo struct {
	ID        uuid.UUID `db:"uuid" json:"uuid"`
	APIID     int       `db:"api_id" json:"api_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Image     string    `db:"image" json:"image"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (t Todo) String() string {
	return fmt.Sprintf("%s (ID: %d) - (USER: %d)", t.Title, t.APIID, t.UserID)
}

// CreateTodo contains fields for creating a new todo.
type CreateTodo struct {
	APIID     int    `json:"api_id"`
	UserID    int    `json:"user_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Completed bool   `json:"completed"`
}

// Summary holds counts over the whole table.
type Summary struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Uncompleted int `json:"uncompleted"`
}
