package domain

import (
	"strings"
	"time"
)

// DatasourceType labels the backing system a connection points at. It is
// descriptive metadata; execution itself happens out of band.
type DatasourceType string

const (
	DatasourcePostgres   DatasourceType = "POSTGRESQL"
	DatasourceMySQL      DatasourceType = "MYSQL"
	DatasourceKubernetes DatasourceType = "KUBERNETES"
)

// DatasourceConnection is a named target that execution requests run against.
// ReviewsRequired is the approval threshold folded into every review-status
// evaluation for requests on this connection.
type DatasourceConnection struct {
	ID              string
	Name            string
	Description     string
	Type            DatasourceType
	ReviewsRequired int
	CreatedAt       time.Time
}

// CreateConnectionInput carries the caller-supplied fields for a new
// datasource connection.
type CreateConnectionInput struct {
	Name            string
	Description     string
	Type            DatasourceType
	ReviewsRequired int
}

// NewDatasourceConnection validates input and constructs a connection.
// A zero ReviewsRequired defaults to one; negative values are rejected.
func NewDatasourceConnection(in CreateConnectionInput, now time.Time) (*DatasourceConnection, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrValidation("connection name is required")
	}
	switch in.Type {
	case DatasourcePostgres, DatasourceMySQL, DatasourceKubernetes:
	case "":
		return nil, ErrValidation("connection type is required")
	default:
		return nil, ErrValidation("unknown connection type %q", in.Type)
	}
	if in.ReviewsRequired < 0 {
		return nil, ErrValidation("reviews required must not be negative")
	}
	if in.ReviewsRequired == 0 {
		in.ReviewsRequired = 1
	}
	return &DatasourceConnection{
		ID:              NewID(),
		Name:            in.Name,
		Description:     in.Description,
		Type:            in.Type,
		ReviewsRequired: in.ReviewsRequired,
		CreatedAt:       now.UTC(),
	}, nil
}
