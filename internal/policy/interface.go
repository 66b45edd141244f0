package policy

import "fmt"

// Interface is a network interface referenced by name.
type Interface struct {
	name string
}

func NewInterface(name string) (Interface, error) {
	if name == "" {
		return Interface{}, ErrEmptyInterface
	}
	return Interface{name: name}, nil
}

func (i Interface) Name() string   { return i.name }
func (i Interface) String() string { return i.name }

func (i Interface) GoString() string {
	return fmt.Sprintf("<Interface %s>", i.name)
}
