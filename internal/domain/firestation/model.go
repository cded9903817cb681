package firestation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/safetynet/safetynet/internal/platform/apierror"
)

// StationNumber is a fire station number. It decodes from either a JSON/YAML
// number or a numeric string, since bulk data files carry it as a string.
type StationNumber int

func (n *StationNumber) UnmarshalJSON(b []byte) error {
	var num int
	if err := json.Unmarshal(b, &num); err == nil {
		*n = StationNumber(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("station number must be a number or numeric string: %s", string(b))
	}
	return n.parse(s)
}

func (n *StationNumber) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("station number must be a scalar, line %d", node.Line)
	}
	return n.parse(node.Value)
}

func (n *StationNumber) parse(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("station number %q is not an integer", s)
	}
	*n = StationNumber(v)
	return nil
}

// FireStation assigns an address to the station covering it.
type FireStation struct {
	Address string        `json:"address" yaml:"address"`
	Station StationNumber `json:"station" yaml:"station"`
}

// AddressKey is the identity of a FireStation: its address, compared
// case-insensitively.
type AddressKey string

func KeyFor(address string) AddressKey {
	return AddressKey(strings.ToLower(address))
}

func (f FireStation) Key() AddressKey {
	return KeyFor(f.Address)
}

func (f *FireStation) Validate() error {
	var v apierror.Validator
	v.NotBlank("address", f.Address, "address cannot be blank")
	if f.Station < 1 {
		v.Add("station", "station number must be greater than or equal to 1")
	}
	return v.Err()
}

// AddressRequest carries the key of a station to delete.
type AddressRequest struct {
	Address string `json:"address" query:"address"`
}
