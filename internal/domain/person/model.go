package person

import (
	"net/mail"

	"github.com/safetynet/safetynet/internal/platform/apierror"
)

// Person is a resident known to the dispatch service.
type Person struct {
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Address   string `json:"address" yaml:"address"`
	City      string `json:"city" yaml:"city"`
	Zip       string `json:"zip" yaml:"zip"`
	Phone     string `json:"phone" yaml:"phone"`
	Email     string `json:"email" yaml:"email"`
}

// Identity is the natural key of a Person. Matching is exact and
// case-sensitive on both names.
type Identity struct {
	FirstName string `json:"firstName" query:"firstName"`
	LastName  string `json:"lastName" query:"lastName"`
}

func (p Person) Identity() Identity {
	return Identity{FirstName: p.FirstName, LastName: p.LastName}
}

func (id Identity) Validate() error {
	var v apierror.Validator
	v.NotBlank("firstName", id.FirstName, "firstname cannot be blank")
	v.NotBlank("lastName", id.LastName, "lastname cannot be blank")
	return v.Err()
}

// Validate checks the fields a request must carry before it reaches the
// service.
func (p *Person) Validate() error {
	var v apierror.Validator
	v.NotBlank("firstName", p.FirstName, "firstname cannot be blank")
	v.NotBlank("lastName", p.LastName, "lastname cannot be blank")
	v.NotBlank("address", p.Address, "address cannot be blank")
	v.NotBlank("city", p.City, "city cannot be blank")
	v.NotBlank("zip", p.Zip, "zip cannot be blank")
	v.NotBlank("phone", p.Phone, "phone cannot be blank")
	v.NotBlank("email", p.Email, "email cannot be blank")
	if p.Email != "" {
		if addr, err := mail.ParseAddress(p.Email); err != nil || addr.Address != p.Email {
			v.Add("email", "email should be valid")
		}
	}
	return v.Err()
}
