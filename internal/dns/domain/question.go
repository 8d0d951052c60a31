package domain

import "fmt"

// Question is one entry of the question section.
type Question struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuestion constructs a Question and validates its fields.
func NewQuestion(name string, rrtype RRType, class RRClass) (Question, error) {
	q := Question{Name: name, Type: rrtype, Class: class}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks the fields a lookup depends on.
func (q Question) Validate() error {
	if len(q.Name) > MaxNameLength {
		return fmt.Errorf("query name exceeds %d bytes", MaxNameLength)
	}
	if q.Type == 0 {
		return fmt.Errorf("unsupported RRType: %d", q.Type)
	}
	if q.Class == 0 {
		return fmt.Errorf("unsupported RRClass: %d", q.Class)
	}
	return nil
}

// CacheKey returns the case-insensitive lookup key for this question.
func (q Question) CacheKey() string {
	return GenerateCacheKey(q.Name, q.Type, q.Class)
}

func (q Question) String() string {
	return fmt.Sprintf("%s %s %s", displayName(q.Name), q.Class, q.Type)
}
