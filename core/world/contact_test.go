package world

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var contactTracked = Object{ID: 100, Name: "tracked"}

func touch(other Object, normal r3.Vec) ContactPoint {
	return ContactPoint{
		LinkA:  contactTracked.RootLink(),
		LinkB:  other.RootLink(),
		Normal: normal,
	}
}

func TestContactSetObjectsCollapsesPerLinkContacts(t *testing.T) {
	table := Object{ID: 1, Name: "table"}
	set := ContactSet{
		touch(table, r3.Vec{Z: 1}),
		touch(table, r3.Vec{X: 1}),
	}

	objects := set.Objects()
	if len(objects) != 1 {
		t.Fatalf("expected repeated contacts with one object to collapse, got %d objects", len(objects))
	}
	if objects[0].ID != table.ID {
		t.Fatalf("expected object %v, got %v", table, objects[0])
	}
}

func TestContactSetNewObjects(t *testing.T) {
	table := Object{ID: 1, Name: "table"}
	hand := Object{ID: 2, Name: "hand"}

	previous := ContactSet{touch(table, r3.Vec{Z: 1})}
	current := ContactSet{
		touch(table, r3.Vec{Z: 1}),
		touch(hand, r3.Vec{X: 1}),
	}

	added := current.NewObjects(previous)
	if len(added) != 1 || added[0].ID != hand.ID {
		t.Fatalf("expected only %v to be new, got %v", hand, added)
	}
	if again := current.NewObjects(previous); len(again) != 1 || again[0].ID != hand.ID {
		t.Fatalf("expected diff to be repeatable, got %v", again)
	}
}

func TestContactSetRemovedObjects(t *testing.T) {
	table := Object{ID: 1, Name: "table"}
	hand := Object{ID: 2, Name: "hand"}

	previous := ContactSet{
		touch(table, r3.Vec{Z: 1}),
		touch(hand, r3.Vec{X: 1}),
	}
	current := ContactSet{touch(hand, r3.Vec{X: 1})}

	removed := current.RemovedObjects(previous)
	if len(removed) != 1 || removed[0].ID != table.ID {
		t.Fatalf("expected only %v to be removed, got %v", table, removed)
	}
}

func TestContactSetDiffWithItselfIsEmpty(t *testing.T) {
	table := Object{ID: 1, Name: "table"}
	set := ContactSet{touch(table, r3.Vec{Z: 1})}

	if added := set.NewObjects(set); len(added) != 0 {
		t.Fatalf("expected no new objects against itself, got %v", added)
	}
	if removed := set.RemovedObjects(set); len(removed) != 0 {
		t.Fatalf("expected no removed objects against itself, got %v", removed)
	}
}

func TestContactSetNormalsOfFiltersByObject(t *testing.T) {
	table := Object{ID: 1, Name: "table"}
	hand := Object{ID: 2, Name: "hand"}
	set := ContactSet{
		touch(table, r3.Vec{Z: 1}),
		touch(table, r3.Vec{X: 1}),
		touch(hand, r3.Vec{Y: 1}),
	}

	normals := set.NormalsOf(table)
	if len(normals) != 2 {
		t.Fatalf("expected 2 normals against the table, got %d", len(normals))
	}
	if len(set.NormalsOf(Object{ID: 99})) != 0 {
		t.Fatalf("expected no normals for an untouched object")
	}
}
