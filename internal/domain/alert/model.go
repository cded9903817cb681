package alert

// PersonSummary is how a resident appears in a station coverage view.
type PersonSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

// StationCoverage lists everyone living at an address a station covers.
type StationCoverage struct {
	Persons    []PersonSummary `json:"persons"`
	AdultCount int             `json:"adultCount"`
	ChildCount int             `json:"childCount"`
}

type ChildSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
}

type MemberSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// HouseholdAlert splits the residents of one address with a known birthdate
// into children and everyone else.
type HouseholdAlert struct {
	Children     []ChildSummary  `json:"children"`
	OtherMembers []MemberSummary `json:"otherMembers"`
}
