// Package intersection implements the four-way intersection traffic
// synchronizer: vehicles entering from one of four directions block
// until their path doesn't conflict with every vehicle currently in the
// intersection, grounded on traffic_synch.c's array_lock/per-origin
// condition variable design.
package intersection

import "sync"

// Direction identifies one of the intersection's four approaches. The
// numeric values match traffic_synch.c's origin/destination encoding
// (Direction north=0, east=1, south=2, west=3) exactly, since
// wakeFromChannel's dispatch logic is transcribed from it switch by switch.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Vehicle is one vehicle's entry request.
type Vehicle struct {
	Origin      Direction
	Destination Direction
}

// RandFn picks 0 or 1 to break the tie between two mutually-safe wakeup
// orderings in randomBroadcast. Exposed so tests can inject a
// deterministic source instead of depending on global randomness
// (traffic_synch.c uses random() % 2).
type RandFn func() int

// Synchronizer admits vehicles into the intersection one non-conflicting
// set at a time. The embedded mutex plays the role of array_lock; one
// condition variable per origin direction plays the role of
// from_north/from_east/from_south/from_west.
type Synchronizer struct {
	sync.Mutex
	vehicles []Vehicle
	cvs      [4]*sync.Cond
	rand     RandFn
}

// New returns a synchronizer with an empty intersection, using rand to
// break wakeup-order ties. A nil rand always picks the first ordering.
func New(rand RandFn) *Synchronizer {
	if rand == nil {
		rand = func() int { return 0 }
	}
	s := &Synchronizer{rand: rand}
	for d := range s.cvs {
		s.cvs[d] = sync.NewCond(&s.Mutex)
	}
	return s
}

func (s *Synchronizer) cond(d Direction) *sync.Cond {
	return s.cvs[d]
}

// rightTurn reports whether v represents a right turn, the one maneuver
// that never conflicts with a vehicle going to a different destination.
func rightTurn(v Vehicle) bool {
	switch {
	case v.Origin == West && v.Destination == South:
		return true
	case v.Origin == South && v.Destination == East:
		return true
	case v.Origin == East && v.Destination == North:
		return true
	case v.Origin == North && v.Destination == West:
		return true
	}
	return false
}

// checkConstraints reports whether newV can safely share the
// intersection with curV, per traffic_synch.c's three non-conflict
// cases: same origin, opposite directions, or a right turn paired with
// a different destination.
func checkConstraints(newV, curV Vehicle) bool {
	if newV.Origin == curV.Origin {
		return true
	}
	if newV.Origin == curV.Destination && newV.Destination == curV.Origin {
		return true
	}
	if (rightTurn(newV) || rightTurn(curV)) && newV.Destination != curV.Destination {
		return true
	}
	return false
}

func (s *Synchronizer) ableToEnter(v Vehicle) bool {
	for _, cur := range s.vehicles {
		if !checkConstraints(v, cur) {
			return false
		}
	}
	return true
}

// BeforeEntry blocks the calling goroutine until v can enter the
// intersection without conflicting with any vehicle already inside, then
// admits it.
func (s *Synchronizer) BeforeEntry(origin, destination Direction) {
	s.Lock()
	defer s.Unlock()

	v := Vehicle{Origin: origin, Destination: destination}
	for !s.ableToEnter(v) {
		s.cond(origin).Wait()
	}
	s.vehicles = append(s.vehicles, v)
}

// AfterExit removes the matching vehicle from the intersection and wakes
// whichever origins can now safely enter.
func (s *Synchronizer) AfterExit(origin, destination Direction) {
	s.Lock()
	defer s.Unlock()

	for i, v := range s.vehicles {
		if v.Origin == origin && v.Destination == destination {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			s.wakeFromChannel(origin, destination)
			return
		}
	}
}

func (s *Synchronizer) randomBroadcast(a, b, c Direction) {
	if s.rand()%2 == 0 {
		s.cond(a).Broadcast()
		s.cond(b).Broadcast()
		s.cond(c).Broadcast()
	} else {
		s.cond(b).Broadcast()
		s.cond(a).Broadcast()
		s.cond(c).Broadcast()
	}
}

// wakeFromChannel wakes the origins that a vehicle leaving via
// origin->destination may have unblocked, transcribed case by case from
// traffic_synch.c's wake_from_channel.
func (s *Synchronizer) wakeFromChannel(origin, destination Direction) {
	switch origin {
	case North:
		switch destination {
		case East:
			s.randomBroadcast(South, West, East)
		case South:
			s.randomBroadcast(West, East, South)
		default:
			s.randomBroadcast(East, South, West)
		}
	case East:
		switch destination {
		case North:
			s.randomBroadcast(South, West, North)
		case South:
			s.randomBroadcast(West, North, South)
		default:
			s.randomBroadcast(North, South, West)
		}
	case South:
		switch destination {
		case North:
			s.randomBroadcast(East, West, North)
		case East:
			s.randomBroadcast(West, North, East)
		default:
			s.randomBroadcast(East, North, West)
		}
	default: // West
		switch destination {
		case North:
			s.randomBroadcast(East, South, North)
		case East:
			s.randomBroadcast(South, North, East)
		default:
			s.randomBroadcast(East, North, South)
		}
	}
}
