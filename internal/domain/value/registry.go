package value

import "fmt"

// Datatype couples a datatype identifier with its lexical parser.
type Datatype struct {
	// ID is the datatype identifier (URN or XML Schema URI).
	ID string
	// Parse converts a canonical string into a value of this datatype.
	Parse func(string) (Value, error)
}

// Registry maps datatype identifiers to parsers. Standard datatypes are
// registered by RegisterStandard; custom datatypes may be added until the
// registry is frozen.
type Registry struct {
	m      map[string]Datatype
	frozen bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Datatype)}
}

// Register adds a datatype. It fails on duplicates and after Freeze.
func (r *Registry) Register(dt Datatype) error {
	if r.frozen {
		return fmt.Errorf("datatype registry is frozen")
	}
	if dt.ID == "" || dt.Parse == nil {
		return fmt.Errorf("datatype must have an id and a parser")
	}
	if _, ok := r.m[dt.ID]; ok {
		return fmt.Errorf("datatype %s already registered", dt.ID)
	}
	r.m[dt.ID] = dt
	return nil
}

// RegisterStandard adds the XACML 3.0 standard datatypes.
func (r *Registry) RegisterStandard() error {
	standard := []Datatype{
		{TypeString, ParseString},
		{TypeBoolean, ParseBoolean},
		{TypeInteger, ParseInteger},
		{TypeDouble, ParseDouble},
		{TypeTime, ParseTime},
		{TypeDate, ParseDate},
		{TypeDateTime, ParseDateTime},
		{TypeDayTimeDuration, ParseDayTimeDuration},
		{TypeYearMonthDuration, ParseYearMonthDuration},
		{TypeAnyURI, ParseAnyURI},
		{TypeHexBinary, ParseHexBinary},
		{TypeBase64Binary, ParseBase64Binary},
		{TypeX500Name, ParseX500Name},
		{TypeRFC822Name, ParseRFC822Name},
		{TypeIPAddress, ParseIPAddress},
		{TypeDNSName, ParseDNSName},
	}
	for _, dt := range standard {
		if err := r.Register(dt); err != nil {
			return err
		}
	}
	return nil
}

// Freeze closes the registry. Registration after Freeze fails; reads are
// safe for concurrent use once frozen.
func (r *Registry) Freeze() { r.frozen = true }

// Has reports whether the datatype identifier is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.m[id]
	return ok
}

// Parse converts a canonical string into a value of the identified datatype.
func (r *Registry) Parse(datatype, s string) (Value, error) {
	dt, ok := r.m[datatype]
	if !ok {
		return Value{}, fmt.Errorf("unknown datatype %s", datatype)
	}
	return dt.Parse(s)
}
