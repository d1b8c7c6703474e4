// Package stats provides lightweight, compile-gated counters in the style
// of the teacher kernel's src/stats/stats.go: a Counter_t that is free to
// increment when statistics are disabled and otherwise atomically counts
// events such as frame allocations or page faults.
package stats

import (
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
)

// Enabled toggles whether Counter_t.Inc does any work. The teacher's
// equivalent flag also gates a cycle-counting Cycles_t type built on a
// custom runtime.Rdtsc hook; this nucleus runs on the stock Go runtime,
// which exposes no equivalent cycle counter, so only the event-counting
// half of the teacher's stats package is carried forward.
const Enabled = false

/// Counter_t is a statistical event counter.
type Counter_t int64

/// Inc increments the counter by one when statistics are enabled.
func (c *Counter_t) Inc() {
	if Enabled {
		atomic.AddInt64((*int64)(c), 1)
	}
}

/// Value returns the counter's current value regardless of Enabled.
func (c *Counter_t) Value() int64 {
	return atomic.LoadInt64((*int64)(c))
}

/// Stats2String converts a struct of Counter_t fields into a printable
/// summary, exactly as the teacher's stats.Stats2String does.
func Stats2String(st interface{}) string {
	if !Enabled {
		return ""
	}
	v := reflect.ValueOf(st)
	s := ""
	for i := 0; i < v.NumField(); i++ {
		t := v.Field(i).Type().String()
		if strings.HasSuffix(t, "Counter_t") {
			n := v.Field(i).Interface().(Counter_t)
			s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(int64(n), 10)
		}
	}
	return s
}
