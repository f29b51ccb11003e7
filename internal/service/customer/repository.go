package customer

import (
	"context"
	"time"

	"github.com/ignite/propensity-engine/internal/domain"
)

// Repository defines the data access contract for customers.
type Repository interface {
	// Get returns a single customer. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Customer, error)

	// List returns customers matching the filter and the total match count.
	List(ctx context.Context, f ListFilter) ([]domain.Customer, int, error)

	Create(ctx context.Context, c *domain.Customer) error

	Delete(ctx context.Context, id string) error
}

// ListFilter controls filtering, sorting and pagination for customer lists.
// Text filters match case-insensitively as substrings.
type ListFilter struct {
	Search    string
	Job       string
	Marital   string
	Education string
	Contact   string
	AgeMin    *int
	AgeMax    *int
	From      *time.Time
	To        *time.Time
	SortBy    string
	SortDir   string
	Limit     int
	Offset    int
}

// SortColumns maps API sort keys to customer columns.
var SortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"age":       "age",
	"job":       "job",
	"marital":   "marital",
	"education": "education",
	"duration":  "duration",
}
