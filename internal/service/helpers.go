// Package service implements the application workflows on top of the domain
// repositories: request lifecycle, review recording, and approval-gated
// execution.
package service

import (
	"context"

	"querygate/internal/domain"
)

// requirePrincipal returns the authenticated principal from context.
func requirePrincipal(ctx context.Context) (domain.ContextPrincipal, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{}, domain.ErrAccessDenied("authentication required")
	}
	return p, nil
}

// requireAdmin checks that the caller in context has admin privileges.
func requireAdmin(ctx context.Context) error {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.IsAdmin {
		return domain.ErrAccessDenied("admin privileges required")
	}
	return nil
}
