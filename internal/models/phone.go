package models

// PhoneNumber is one contact number with optional notes.
type PhoneNumber struct {
	Number int64  `json:"number"`
	Notes  string `json:"notes,omitempty"`
}

// PhoneInfo groups phone numbers and WhatsApp details. PrimaryPhone is an
// index into PhoneNumbers, or -1 when no number is primary.
type PhoneInfo struct {
	HasWhatsapp            bool          `json:"hasWhatsapp"`
	PhoneNumbers           []PhoneNumber `json:"phoneNumbers"`
	PrimaryPhone           int           `json:"primaryPhone"`
	WaBroadcastSAR         string        `json:"waBroadcastSAR,omitempty"`
	OtherWaBroadcastGroups []string      `json:"otherWaBroadcastGroups,omitempty"`
	WhatsappNotes          string        `json:"whatsappNotes,omitempty"`
}

// AddNumber appends a number and returns its index.
func (p *PhoneInfo) AddNumber(number PhoneNumber) int {
	p.PhoneNumbers = append(p.PhoneNumbers, number)
	return len(p.PhoneNumbers) - 1
}

// IndexOf returns the index of number or -1.
func (p *PhoneInfo) IndexOf(number int64) int {
	for i, candidate := range p.PhoneNumbers {
		if candidate.Number == number {
			return i
		}
	}
	return -1
}

// SetPrimary marks number as primary, appending it when absent.
func (p *PhoneInfo) SetPrimary(number int64) {
	idx := p.IndexOf(number)
	if idx < 0 {
		idx = p.AddNumber(PhoneNumber{Number: number})
	}
	p.PrimaryPhone = idx
}

// RemoveNumber deletes the number at idx and keeps PrimaryPhone pointing at the same entry.
func (p *PhoneInfo) RemoveNumber(idx int) {
	if idx < 0 || idx >= len(p.PhoneNumbers) {
		return
	}
	p.PhoneNumbers = append(p.PhoneNumbers[:idx], p.PhoneNumbers[idx+1:]...)
	switch {
	case p.PrimaryPhone == idx:
		p.PrimaryPhone = -1
	case p.PrimaryPhone > idx:
		p.PrimaryPhone--
	}
}

// Primary returns the primary number when the index is valid.
func (p *PhoneInfo) Primary() (PhoneNumber, bool) {
	if p.PrimaryPhone < 0 || p.PrimaryPhone >= len(p.PhoneNumbers) {
		return PhoneNumber{}, false
	}
	return p.PhoneNumbers[p.PrimaryPhone], true
}

// Normalize clamps an out-of-range PrimaryPhone to -1.
func (p *PhoneInfo) Normalize() {
	if p.PhoneNumbers == nil {
		p.PhoneNumbers = []PhoneNumber{}
	}
	if p.PrimaryPhone < 0 || p.PrimaryPhone >= len(p.PhoneNumbers) {
		p.PrimaryPhone = -1
	}
}
