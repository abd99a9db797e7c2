package profile

import "testing"

func TestProfiler_Disabled(t *testing.T) {
	// An empty mode never starts a session, with or without the pprof tag.
	p := Profiler{Path: t.TempDir(), Quiet: true}

	stop := p.Start()
	if _, ok := stop.(ignore); !ok {
		t.Fatalf("Start() with empty mode = %T, want no-op", stop)
	}

	stop.Stop()
}

func TestProfiler_UnknownMode(t *testing.T) {
	p := Profiler{Mode: "nope", Path: t.TempDir(), Quiet: true}

	stop := p.Start()
	if _, ok := stop.(ignore); !ok {
		t.Fatalf("Start() with unknown mode = %T, want no-op", stop)
	}

	stop.Stop()
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v without profiling support", modes)
		}

		return
	}

	for _, m := range modes {
		if m == "quiet" {
			t.Error("Modes() lists quiet")
		}
	}
}
