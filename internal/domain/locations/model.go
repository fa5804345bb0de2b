package locations

import "time"

// Location is a named storage place, e.g. "Karton A1".
type Location struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}
