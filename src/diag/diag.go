// Package diag snapshots kernel occupancy into a pprof profile and
// renders a human-readable census, supplementing spec.md with the kind
// of live-inspection tooling a real kernel exposes but the distilled
// spec left out. Grounded on src/stats/stats.go for what counts as
// worth snapshotting and src/caller/caller.go for the plain, unadorned
// print style.
package diag

import (
	"strings"

	"github.com/google/pprof/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/haiyixx/os161-1.99/src/kernel"
)

// Snapshot builds a pprof profile with one sample per live process,
// labeled with its name and pid, so existing pprof tooling (go tool
// pprof -tree, flamegraph viewers) can browse a process census the same
// way it browses a heap or CPU profile.
func Snapshot(ctx *kernel.Context) *profile.Profile {
	procs := ctx.Procs.Table.Snapshot()

	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "processes", Unit: "count"}},
		Sample:     make([]*profile.Sample, 0, len(procs)),
	}
	for _, pr := range procs {
		p.Sample = append(p.Sample, &profile.Sample{
			Value:    []int64{1},
			Label:    map[string][]string{"name": {pr.Name}, "cwd": {pr.Cwd.String()}},
			NumLabel: map[string][]int64{"pid": {int64(pr.Pid)}},
		})
	}
	return p
}

// Format renders a one-paragraph, locale-formatted summary of coremap
// occupancy and process count.
func Format(ctx *kernel.Context) string {
	pr := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString(pr.Sprintf("frames: %d free of %d\n", ctx.Coremap.FreeCount(), ctx.Coremap.FrameCount()))
	b.WriteString(pr.Sprintf("processes: %d live\n", ctx.Procs.Table.Len()))
	for _, pr2 := range ctx.Procs.Table.Snapshot() {
		b.WriteString(pr.Sprintf("  pid %d %s cwd=%s\n", pr2.Pid, pr2.Name, pr2.Cwd.String()))
	}
	return b.String()
}
