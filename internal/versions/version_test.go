package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	vcs := func() (string, string) { return "0123456789abcdef", "2024-03-10T12:00:00Z" }

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		want      VersionInfo
	}{
		{
			name:      "release build keeps ldflags values",
			version:   "v1.2.0",
			commit:    "abc1234",
			buildDate: "2024-01-02T03:04:05Z",
			want:      VersionInfo{Version: "v1.2.0", Commit: "abc1234", BuildDate: "2024-01-02 03:04:05 UTC"},
		},
		{
			name:      "dev build reads vcs settings",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			want:      VersionInfo{Version: "build-01234567", Commit: "0123456789abcdef", BuildDate: "2024-03-10 12:00:00 UTC"},
		},
		{
			name:      "unparseable date is kept",
			version:   "v0.1.0",
			commit:    "abc",
			buildDate: "yesterday",
			want:      VersionInfo{Version: "v0.1.0", Commit: "abc", BuildDate: "yesterday"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := versionInfo(tt.version, tt.commit, tt.buildDate, vcs)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionInfoWithoutVCS(t *testing.T) {
	t.Parallel()

	got := versionInfo("dev", unknownStr, unknownStr, func() (string, string) { return "", "" })
	assert.Equal(t, "build-unknown", got.Version)
	assert.Equal(t, unknownStr, got.BuildDate)
}
