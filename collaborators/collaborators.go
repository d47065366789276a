// Package collaborators implements the no-op Checkout/Download/Publish
// step collaborators spec.md §4.5.4 point 3 describes: on local runs they
// produce a Success result without reaching any external system.
package collaborators

import "fmt"

// Outcome is the result one of this package's no-op collaborators
// produces; it always reports success, matching spec.md §4.5.4 point 3
// ("these may be no-ops that still produce a Success result").
type Outcome struct {
	Message string
}

// Checkout stands in for a repository checkout step. repo is the
// `checkout:` value (a repository alias or "self"/"none").
func Checkout(repo string) Outcome {
	if repo == "none" {
		return Outcome{Message: "checkout none: skipping source checkout"}
	}
	return Outcome{Message: fmt.Sprintf("checkout %s: no-op in local runs", repo)}
}

// Download stands in for a pipeline artifact download step.
func Download(artifact string) Outcome {
	return Outcome{Message: fmt.Sprintf("download %s: no-op in local runs", artifact)}
}

// Publish stands in for a pipeline artifact publish step.
func Publish(artifact string) Outcome {
	return Outcome{Message: fmt.Sprintf("publish %s: no-op in local runs", artifact)}
}
