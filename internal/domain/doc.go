// Package domain holds the AbstractChild entity, its typed list and the
// repository interface used to persist it.
//
// The package has no infrastructure dependencies. Storage lives in
// internal/infrastructure/sqlite and resolution in internal/children.
package domain
