package extraction

// Body is the organizational body a record belongs to.
type Body int

const (
	BodyPrimary Body = iota
	BodySecondary
)

// Code is the body code written to the ORGAO column.
func (b Body) Code() string {
	if b == BodySecondary {
		return "CM"
	}
	return "AM"
}

func (b Body) String() string {
	if b == BodySecondary {
		return "SECONDARY"
	}
	return "PRIMARY"
}

// Section is the candidate section within a list.
type Section int

const (
	SectionUnset Section = iota
	SectionRegular
	SectionSubstitute
)

// TypeCode is the candidate type code written to the TIPO column.
func (s Section) TypeCode() string {
	if s == SectionSubstitute {
		return "3"
	}
	return "2"
}

func (s Section) String() string {
	switch s {
	case SectionRegular:
		return "REGULAR"
	case SectionSubstitute:
		return "SUBSTITUTE"
	}
	return "UNSET"
}

// State is the mutable context of one document scan. It is owned by a
// single Extract call and never shared.
type State struct {
	Body     Body
	Section  Section
	Sigla    string
	ListName string
	Seq      int
}

// latchSecondary moves the scan to the secondary body. It never reverts.
func (s *State) latchSecondary() bool {
	if s.Body == BodySecondary {
		return false
	}
	s.Body = BodySecondary
	return true
}

func (s *State) enterSection(sec Section) {
	s.Section = sec
	s.Seq = 0
}

// enterList starts a new list context. The section is cleared so the
// first candidate defaults to regular unless a marker says otherwise.
func (s *State) enterList(name, sigla string) {
	s.ListName = name
	s.Sigla = sigla
	s.Section = SectionUnset
	s.Seq = 0
}

// nextOrder returns the order number of the next accepted candidate.
func (s *State) nextOrder() int {
	if s.Section == SectionUnset {
		s.enterSection(SectionRegular)
	}
	s.Seq++
	return s.Seq
}
