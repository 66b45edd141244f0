package policy

import "fmt"

// Protocol is an IP protocol identified by its IANA number.
type Protocol struct {
	number uint8
	name   string
}

// NewProtocol creates a protocol. The name is optional.
func NewProtocol(number int, name string) (Protocol, error) {
	if number < 0 || number > 255 {
		return Protocol{}, fmt.Errorf("%w: %d", ErrInvalidProtocol, number)
	}
	return Protocol{number: uint8(number), name: name}, nil
}

// Common protocols.
var (
	ICMP = Protocol{number: 1, name: "icmp"}
	TCP  = Protocol{number: 6, name: "tcp"}
	UDP  = Protocol{number: 17, name: "udp"}
)

func (p Protocol) Number() int  { return int(p.number) }
func (p Protocol) Name() string { return p.name }

// String returns the name if set, otherwise ip/<number>.
func (p Protocol) String() string {
	if p.name != "" {
		return p.name
	}
	return fmt.Sprintf("ip/%d", p.number)
}

func (p Protocol) GoString() string {
	if p.name != "" {
		return fmt.Sprintf("<Protocol %d(%s)>", p.number, p.name)
	}
	return fmt.Sprintf("<Protocol %d>", p.number)
}
