package domain

import "time"

// Site is a tracked physical location belonging to a customer. A nil
// DeletedAt means the site is active; a set one means it sits in the
// recycle list and is hidden from normal queries until restored.
type Site struct {
	ID         int64      `json:"id" db:"id"`
	CustomerID int64      `json:"customer_id" db:"customer_id"`
	Name       string     `json:"name" db:"name"`
	JobNumber  string     `json:"job_number" db:"job_number"`
	Latitude   *float64   `json:"latitude" db:"latitude"`
	Longitude  *float64   `json:"longitude" db:"longitude"`
	Address    string     `json:"address" db:"address"`
	Category   string     `json:"category" db:"category"`
	Status     string     `json:"status" db:"status"`
	Notes      string     `json:"notes" db:"notes"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

func (s *Site) Deleted() bool { return s.DeletedAt != nil }

// Pin is the map-marker projection of a site with coordinates.
type Pin struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	JobNumber string  `json:"job_number" db:"job_number"`
	Latitude  float64 `json:"lat" db:"latitude"`
	Longitude float64 `json:"lng" db:"longitude"`
}
