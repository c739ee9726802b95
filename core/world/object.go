package world

import "fmt"

// Object identifies a body in the scene. Objects are compared by ID;
// the name is the display name used for hand matching and reporting.
type Object struct {
	ID   int64
	Name string
}

func (o Object) String() string {
	return fmt.Sprintf("%s(%d)", o.Name, o.ID)
}

// Link is a named rigid part of an object. Scene objects here are single
// bodies, so the root link is the only link an object carries.
type Link struct {
	Object Object
	Name   string
}

// RootLink returns the object's root link.
func (o Object) RootLink() Link {
	return Link{Object: o, Name: "base"}
}

func (l Link) String() string {
	return fmt.Sprintf("%s/%s", l.Object, l.Name)
}
