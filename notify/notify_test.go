package notify

import "testing"

func TestMulti_FansOutInOrder(t *testing.T) {
	var order []string
	a := Func(func(Event) { order = append(order, "a") })
	b := Func(func(Event) { order = append(order, "b") })

	Multi{a, b}.PhaseChanged(Event{Phase: "resolved"})

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expected [a b], got %v", order)
	}
}

func TestMulti_EmptyIsNoop(t *testing.T) {
	Multi{}.PhaseChanged(Event{Phase: "idle"})
}
