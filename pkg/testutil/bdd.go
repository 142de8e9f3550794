package testutil

import "testing"

// Steps nest as subtests, so `go test -run 'Scenario/Given_x/When_y'` selects
// a single branch of a scenario.

func Given(t *testing.T, context string, body func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Given", context, body)
}

func When(t *testing.T, action string, body func(t *testing.T)) bool {
	t.Helper()
	return step(t, "When", action, body)
}

func Then(t *testing.T, outcome string, body func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Then", outcome, body)
}

// And continues the preceding step under the same parent.
func And(t *testing.T, outcome string, body func(t *testing.T)) bool {
	t.Helper()
	return step(t, "And", outcome, body)
}

func step(t *testing.T, keyword, desc string, body func(t *testing.T)) bool {
	t.Helper()
	return t.Run(keyword+" "+desc, body)
}
