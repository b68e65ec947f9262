// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The batch loader (BatchLoader.Load) is the centre of the package: every
// other service either prepares files for it or drives it over a plan.
// Services have no CGO dependencies and never talk to a database driver
// directly.
package services
