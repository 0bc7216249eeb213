package models

import "time"

// ContributionStatus is the lifecycle state of a contribution.
//
// The machine is:
//
//	not_paid --markPaid--> paid --confirm--> confirmed (terminal)
//	                       paid --reject---> not_received --markPaid--> paid
type ContributionStatus string

const (
	// ContributionNotPaid is the implicit state of an obligation with no row yet,
	// and the starting state of a lazily created row.
	ContributionNotPaid ContributionStatus = "not_paid"
	// ContributionPaid means the contributor claims payment; awaiting the
	// receiver's confirmation.
	ContributionPaid ContributionStatus = "paid"
	// ContributionConfirmed means the receiver acknowledged the payment.
	// Terminal for the period; this is the only "fully satisfied" state.
	ContributionConfirmed ContributionStatus = "confirmed"
	// ContributionNotReceived means the receiver rejected the claim. The
	// contributor may resubmit.
	ContributionNotReceived ContributionStatus = "not_received"
)

// CanTransition reports whether the machine permits moving to next.
func (s ContributionStatus) CanTransition(next ContributionStatus) bool {
	switch s {
	case ContributionNotPaid, ContributionNotReceived:
		return next == ContributionPaid
	case ContributionPaid:
		return next == ContributionConfirmed || next == ContributionNotReceived
	case ContributionConfirmed:
		return false
	}
	return false
}

// Settled reports whether the obligation is fully satisfied.
func (s ContributionStatus) Settled() bool { return s == ContributionConfirmed }

// Contribution is one obligation of one contributor for one period of a group.
//
// PeriodKey disambiguates recurring obligations: birthday groups use
// "<birthdayUserID>:<year>", subscriptions use the period start ("2006-01" or
// "2006"), and general groups use the single implicit period. At most one
// contribution exists per (GroupID, ContributorID, PeriodKey).
type Contribution struct {
	ID            string
	GroupID       string
	ContributorID string

	// ReceiverID is who the money is owed to for this period: the birthday
	// person for birthday groups, the group admin otherwise.
	ReceiverID string

	PeriodKey   string
	AmountCents int64
	Status      ContributionStatus

	// ContributionDate is when the contributor marked the obligation paid.
	// Zero until the first markPaid.
	ContributionDate time.Time

	Note string

	// TransactionID links the debit entry of the ledger pair created at
	// settlement. Empty until the contribution is first settled; checked before
	// settling to keep retries from creating a second pair.
	TransactionID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
