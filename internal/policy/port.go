package policy

import "fmt"

// Port is a transport port on a given protocol, optionally named.
type Port struct {
	protocol Protocol
	number   uint16
	name     string
}

// Service is the named form of a Port. Both describe the same thing.
type Service = Port

// NewPort creates a port. The name is optional.
func NewPort(protocol Protocol, number int, name string) (Port, error) {
	if number < 0 || number > 65535 {
		return Port{}, fmt.Errorf("%w: %d", ErrInvalidPort, number)
	}
	return Port{protocol: protocol, number: uint16(number), name: name}, nil
}

// NewService is an alias of NewPort for callers thinking in services.
func NewService(protocol Protocol, number int, name string) (Service, error) {
	return NewPort(protocol, number, name)
}

func (p Port) Protocol() Protocol { return p.protocol }
func (p Port) Number() int        { return int(p.number) }
func (p Port) Name() string       { return p.name }

// String returns the name if set, otherwise <protocol>/<number>.
func (p Port) String() string {
	if p.name != "" {
		return p.name
	}
	return fmt.Sprintf("%s/%d", p.protocol, p.number)
}

func (p Port) GoString() string {
	if p.name != "" {
		return fmt.Sprintf("<Port %s/%d(%s)>", p.protocol, p.number, p.name)
	}
	return fmt.Sprintf("<Port %s/%d>", p.protocol, p.number)
}
