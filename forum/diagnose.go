package forum

import (
	"context"
	"fmt"

	"github.com/kasilami/kasilami/store"
)

// Check statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Check is one line of the connection test page.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Diagnose probes the backend directly, bypassing the cache.
func (s *Service) Diagnose(ctx context.Context) []Check {
	checks := make([]Check, 0, 3)

	if err := s.repo.Ping(ctx); err != nil {
		checks = append(checks, Check{Name: "connection", Status: StatusError, Message: err.Error()})
	} else {
		checks = append(checks, Check{Name: "connection", Status: StatusSuccess, Message: "connected to backend"})
	}

	kasis, err := s.repo.ListKasis(ctx)
	switch {
	case err != nil:
		checks = append(checks, Check{Name: "kasis", Status: StatusError, Message: err.Error()})
	case len(kasis) == 0:
		checks = append(checks, Check{Name: "kasis", Status: StatusError, Message: "no kasis found"})
	default:
		checks = append(checks, Check{Name: "kasis", Status: StatusSuccess, Message: fmt.Sprintf("found %d kasis", len(kasis))})
	}

	if posts, err := s.repo.ListPosts(ctx, store.PostFilter{}); err != nil {
		checks = append(checks, Check{Name: "posts", Status: StatusError, Message: err.Error()})
	} else {
		checks = append(checks, Check{Name: "posts", Status: StatusSuccess, Message: fmt.Sprintf("found %d posts", len(posts))})
	}
	return checks
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if c.Status != StatusSuccess {
			return false
		}
	}
	return true
}
