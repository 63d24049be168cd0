package models

import (
	"strings"
	"time"
)

// DateLayout is the textual deadline format admins type and users see.
const DateLayout = "2006-01-02 15:04"

type User struct {
	ID         int64
	VoteChoice *int64 // design ID, resolved at query time
	HasVoted   bool
	HasOrdered bool
	CreatedAt  time.Time
}

type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Sizes lists the orderable sizes in presentation order.
var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL, SizeXXL}

func ParseSize(s string) (Size, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, sz := range Sizes {
		if string(sz) == s {
			return sz, true
		}
	}
	return "", false
}

type Order struct {
	ID            int64
	UserID        int64
	FullName      string
	ShirtNumber   int
	ShirtName     string
	Size          Size
	ReceiptHandle string
	PaymentTime   time.Time
}

type Design struct {
	ID           int64
	Name         string
	Description  string
	ImageHandle  string
	CreatedAt    time.Time
	IsActive     bool
	DisplayOrder int
}

// DesignPatch carries a partial design update; nil fields are left untouched.
type DesignPatch struct {
	Name         *string
	Description  *string
	ImageHandle  *string
	IsActive     *bool
	DisplayOrder *int
}

func (p DesignPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.ImageHandle == nil && p.IsActive == nil && p.DisplayOrder == nil
}

type Deadlines struct {
	VoteDeadline    time.Time
	PaymentDeadline time.Time
}

type DesignVotes struct {
	Design Design
	Votes  int
}

type VoteTally struct {
	Results []DesignVotes
	// Dangling counts cast votes whose design is inactive or no longer exists.
	Dangling int
}

func (t VoteTally) Total() int {
	n := t.Dangling
	for _, r := range t.Results {
		n += r.Votes
	}
	return n
}
