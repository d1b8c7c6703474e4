package accnt

import (
	"testing"
	"time"
)

func TestFetchAndAdd(t *testing.T) {
	var a Accnt_t
	a.Utadd(int64(10 * time.Millisecond))
	a.Systadd(int64(5 * time.Millisecond))

	u := a.Fetch()
	if u.User != 10*time.Millisecond {
		t.Fatalf("expected user time 10ms, got %v", u.User)
	}
	if u.Sys != 5*time.Millisecond {
		t.Fatalf("expected sys time 5ms, got %v", u.Sys)
	}

	var b Accnt_t
	b.Utadd(int64(time.Millisecond))
	a.Add(&b)
	if got := a.Fetch().User; got != 11*time.Millisecond {
		t.Fatalf("expected merged user time 11ms, got %v", got)
	}
}
