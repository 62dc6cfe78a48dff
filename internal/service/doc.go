// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects, the generation
// pipeline and repositories (defined in internal/store) to fulfill
// application features.
//
// Key components:
//
// 1. SessionService:
//   - Creates anonymous sessions and the signed tokens that name them
//   - Resolves, extends, deactivates and cleans up sessions
//
// 2. FlashcardService:
//   - Sanitizes notes, runs the generation pipeline and stores the resulting set
//   - Scopes every set operation to the owning session
//   - Records study attempts and computes statistics
//
// 3. Error Handling:
//   - Not-found conditions wrap the store sentinels so errors.Is works across layers
//   - Unexpected errors are wrapped in *ServiceError
//
// The service layer depends on domain entities and repository interfaces (from store),
// but never on specific infrastructure implementations.
package service
