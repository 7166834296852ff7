// Package helper provides shared test helpers for the dispatcher tests:
// fixture builders, observability spies and small assertion utilities.
package helper
