// internal/models/comment.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// DeletedContentPlaceholder replaces the content of a comment that was soft
// deleted with content clearing. The original content is not retained, so a
// later restore keeps the placeholder.
const DeletedContentPlaceholder = "[deleted]"

// Comment is a node in a task's comment thread. Threads are stored flat: a
// reply references its parent by id and parents are resolved through the
// repository, never through in-memory child pointers.
type Comment struct {
	ID        string         `db:"id" json:"id"`
	TaskID    string         `db:"task_id" json:"task_id"`
	UserID    string         `db:"user_id" json:"user_id"`
	ParentID  *string        `db:"parent_id" json:"parent_id,omitempty"`
	Content   string         `db:"content" json:"content"`
	Mentions  pq.StringArray `db:"mentions" json:"mentions"`
	IsEdited  bool           `db:"is_edited" json:"is_edited"`
	IsDeleted bool           `db:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
