package domain

import "time"

// Article is a knowledge-base entry browsed by customers.
type Article struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
}
