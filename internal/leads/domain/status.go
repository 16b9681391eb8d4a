package domain

// Status is the qualification state of a lead.
type Status string

const (
	StatusNew          Status = "new"
	StatusContacted    Status = "contacted"
	StatusQualified    Status = "qualified"
	StatusDisqualified Status = "disqualified"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusDisqualified:
		return true
	}
	return false
}

// transitions maps a status to the statuses a lead may move into.
// A disqualified lead can be recycled back to contacted.
var transitions = map[Status][]Status{
	StatusNew:          {StatusContacted, StatusQualified, StatusDisqualified},
	StatusContacted:    {StatusQualified, StatusDisqualified},
	StatusQualified:    {StatusDisqualified},
	StatusDisqualified: {StatusContacted},
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
