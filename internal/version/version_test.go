package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	info := Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
	fromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if info.Version != "0.3.1" || info.Commit != "abc123" || !info.Dirty {
		t.Errorf("unexpected info %+v", info)
	}
	if info.String() != "0.3.1-dirty" {
		t.Errorf("String() = %q", info.String())
	}
}

func TestFromBuildInfo_LdflagsWin(t *testing.T) {
	info := Info{Version: "1.0.0", Commit: "deadbeef", BuildDate: "2026-01-01"}
	fromBuildInfo(&info, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}},
	})
	if info.Version != "1.0.0" || info.Commit != "deadbeef" {
		t.Errorf("ldflags values must not be replaced: %+v", info)
	}
}

func TestFull(t *testing.T) {
	out := Info{Version: "1.2.3", Commit: "c", BuildDate: "d", GoVersion: "go1.25", Platform: "linux/amd64"}.Full()
	if !strings.HasPrefix(out, "slotwatch 1.2.3\n") || !strings.Contains(out, "linux/amd64") {
		t.Errorf("unexpected Full() output:\n%s", out)
	}
}
