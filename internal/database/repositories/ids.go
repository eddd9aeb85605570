package repositories

import "github.com/lucsky/cuid"

// newID generates a new collision-resistant ID for rows whose table uses a
// string primary key, the same scheme the teacher's repositories use.
func newID() string {
	return cuid.New()
}
