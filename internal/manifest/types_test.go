package manifest

import "testing"

func TestNameKey(t *testing.T) {
	if got := NameKey("  CoRe "); got != "core" {
		t.Errorf("NameKey() = %q, want %q", got, "core")
	}
}

func TestDependsOn(t *testing.T) {
	d := &Descriptor{Name: "Addon", Depend: []string{"Core"}, SoftDepend: []string{"Economy"}}
	for _, name := range []string{"core", "CORE", "economy"} {
		if !d.DependsOn(name) {
			t.Errorf("DependsOn(%q) = false, want true", name)
		}
	}
	if d.DependsOn("Addon") {
		t.Error("DependsOn(self) = true, want false")
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.2.0", -1},
		{"2", "1.9.9", 1},
		{"1.0", "1.0.0", 0},
		{"snapshot", "0.0.1", -1},
		{"0.0.1", "snapshot", 1},
		{"foo", "bar", 0},
	}

	for _, tt := range tests {
		got := CompareVersions(&Descriptor{Version: tt.a}, &Descriptor{Version: tt.b})
		if got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
