// Package communication defines email and call records exchanged on a case.
package communication

import (
	"strings"
	"time"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Kind distinguishes the communication channel.
type Kind string

const (
	KindEmail Kind = "email"
	KindCall  Kind = "call"
)

// Direction indicates whether the firm received or initiated the message.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Message is a single email or call record linked to a case.  For calls,
// Subject carries the call note title and DurationSec the call length;
// Body is empty unless a transcript or note was attached.
type Message struct {
	ID          common.ID `json:"id"`
	CaseID      common.ID `json:"case_id"`
	Kind        Kind      `json:"kind"`
	Direction   Direction `json:"direction"`
	Timestamp   time.Time `json:"timestamp"`
	Subject     string    `json:"subject,omitempty"`
	Body        string    `json:"body,omitempty"`
	FromAddr    string    `json:"from_addr,omitempty"`
	ToAddrs     []string  `json:"to_addrs,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DurationSec int       `json:"duration_sec,omitempty"`
}

// InvolvesContact reports whether the message was exchanged with the given
// email address or phone number.  Email matching is case-insensitive; empty
// identifiers never match.
func (m *Message) InvolvesContact(email, phone string) bool {
	if email != "" {
		if strings.EqualFold(m.FromAddr, email) {
			return true
		}
		for _, to := range m.ToAddrs {
			if strings.EqualFold(to, email) {
				return true
			}
		}
	}
	if phone != "" && m.Phone == phone {
		return true
	}
	return false
}
