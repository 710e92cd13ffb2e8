// Package app holds the process-wide application context handed to every
// request handler.
package app

import (
	"psjudge_frontend/internal/app/service"
	"psjudge_frontend/internal/builder"
	"psjudge_frontend/internal/domain/repository"
	"psjudge_frontend/internal/web/session"
)

// Context is built once at startup and shared by all requests. Handlers get
// their repositories through NewRepos lazily, so actions that never touch
// the database never build a repository bundle.
type Context struct {
	Builder  *builder.Client
	Sessions *session.Store
	NewRepos func() *repository.Bundle
	Auth     *service.AuthService
	Students *service.StudentService
}
