package domain

// License is the seat accounting of one organization. Pending counts only
// unexpired invitations, so an expired invite stops holding a seat.
type License struct {
	Total     int
	Active    int
	Pending   int
	Used      int
	Available int
}

// NewLicense derives Used and Available. Available may go negative when
// seats are reduced below current usage; no new seats are granted then.
func NewLicense(total, active, pending int) License {
	used := active + pending
	return License{
		Total:     total,
		Active:    active,
		Pending:   pending,
		Used:      used,
		Available: total - used,
	}
}

// HasSeat reports whether one more membership fits.
func (l License) HasSeat() bool { return l.Available > 0 }
