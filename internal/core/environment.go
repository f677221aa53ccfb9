package core

import (
	"fmt"
	"strings"
)

// Environment represents the deployment environment of the service.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// String returns the string representation of the environment.
func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether the environment corresponds to production.
func (e Environment) IsProduction() bool {
	return e == Production
}

// ParseEnvironment normalises the provided value into one of the known environments.
// Unknown values fall back to Development so the application can still start
// with sensible defaults.
func ParseEnvironment(v string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(v))) {
	case Production:
		return Production
	case Staging:
		return Staging
	case Testing:
		return Testing
	default:
		return Development
	}
}

// Role selects which halves of the pipeline a process runs.
type Role string

const (
	RoleAPI    Role = "api"
	RoleWorker Role = "worker"
	RoleAll    Role = "all"
)

// ParseRole validates a role name. Empty means RoleAll; anything unknown is
// an error.
func ParseRole(v string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(v))); r {
	case RoleAPI, RoleWorker, RoleAll:
		return r, nil
	case "":
		return RoleAll, nil
	default:
		return "", fmt.Errorf("unknown role %q", v)
	}
}

// RunsAPI reports whether the dialogue HTTP surface should be started.
func (r Role) RunsAPI() bool { return r == RoleAPI || r == RoleAll }

// RunsWorker reports whether fulfillment workers should be started.
func (r Role) RunsWorker() bool { return r == RoleWorker || r == RoleAll }
