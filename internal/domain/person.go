package domain

// VisitorUID is the reserved PersonUID stored on records captured for
// unidentified, non-employee subjects. Visitor identity across records is
// correlated by mobile number instead, because the declared mobile is the
// only repeatable key for a visitor.
const VisitorUID = "0"

// Employee is read-only from this service's perspective; FaceUID is the
// stable key correlating event-stream PersonUIDs to a named identity.
type Employee struct {
	EmployeeID   string
	EmployeeName string
	Mobile       string
	SiteID       int
	DepartmentID int
	ImageBase64  string
	Role         string
	FaceUID      string
}

// SubjectKind distinguishes how a record subject is identified.
type SubjectKind int

const (
	SubjectEmployee SubjectKind = iota
	SubjectVisitor
)

// Subject is the identity key of a record owner: employees are keyed by
// their face UID, visitors by the mobile number captured on the record.
// Modelled as an explicit tagged value so callers never re-derive
// "is this a visitor" from string comparison.
type Subject struct {
	Kind   SubjectKind
	UID    string // set for employees
	Mobile string // set for visitors
}

func EmployeeSubject(uid string) Subject {
	return Subject{Kind: SubjectEmployee, UID: uid}
}

func VisitorSubject(mobile string) Subject {
	return Subject{Kind: SubjectVisitor, Mobile: mobile}
}

func (s Subject) IsVisitor() bool { return s.Kind == SubjectVisitor }

// SubjectOf classifies a record by its stored person UID.
func SubjectOf(personUID, mobile string) Subject {
	if personUID == VisitorUID {
		return VisitorSubject(mobile)
	}
	return EmployeeSubject(personUID)
}
