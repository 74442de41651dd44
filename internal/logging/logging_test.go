package logging

import "testing"

func TestNew(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		log, err := New(verbose)
		if err != nil {
			t.Fatalf("New(%v): %v", verbose, err)
		}
		if got := log.V(1).Enabled(); got != verbose {
			t.Errorf("New(%v).V(1).Enabled() = %v", verbose, got)
		}
	}
}
