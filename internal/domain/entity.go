package domain

type EntityLabel string

const (
	EntityPerson       EntityLabel = "PERSON"
	EntityDate         EntityLabel = "DATE"
	EntityOrganization EntityLabel = "ORG"
	EntityLocation     EntityLabel = "GPE"
	EntityMoney        EntityLabel = "MONEY"
)

// Entity is a recognized span of a transcript. Start is the byte offset of
// Text in the transcript, or -1 when the recognizer could not locate it.
type Entity struct {
	Text  string
	Label EntityLabel
	Start int
}

// FieldFor maps an entity label to the field it populates.
func (l EntityLabel) FieldFor() (Field, bool) {
	switch l {
	case EntityPerson:
		return FieldName, true
	case EntityDate:
		return FieldDate, true
	case EntityOrganization:
		return FieldOrganization, true
	case EntityLocation:
		return FieldLocation, true
	case EntityMoney:
		return FieldAmount, true
	}
	return "", false
}
