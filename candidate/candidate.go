package candidate

// FieldCount is the number of positional fields in a registration row.
const FieldCount = 6

// FieldNames are the canonical document keys, in positional order.
var FieldNames = []string{"first_name", "last_name", "date_of_birth", "party", "identifier", "position"}

// Record is one parsed candidate-registration entry shared by parsers, sinks and outputs.
type Record struct {
	FirstName   string `json:"first_name" bson:"first_name"`
	LastName    string `json:"last_name" bson:"last_name"`
	DateOfBirth string `json:"date_of_birth" bson:"date_of_birth"`
	Party       string `json:"party" bson:"party"`
	Identifier  string `json:"identifier" bson:"identifier"`
	Position    string `json:"position" bson:"position"`
}

// FromFields maps the first six values positionally. The second return value is
// false when fewer than six values are given.
func FromFields(fields []string) (Record, bool) {
	if len(fields) < FieldCount {
		return Record{}, false
	}
	return Record{
		FirstName:   fields[0],
		LastName:    fields[1],
		DateOfBirth: fields[2],
		Party:       fields[3],
		Identifier:  fields[4],
		Position:    fields[5],
	}, true
}

// Fields returns the values in the order of FieldNames.
func (r Record) Fields() []string {
	return []string{r.FirstName, r.LastName, r.DateOfBirth, r.Party, r.Identifier, r.Position}
}
