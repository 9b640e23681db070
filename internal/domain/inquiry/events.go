package inquiry

import "time"

type InquiryReceived struct {
	InquiryID InquiryID `json:"inquiry_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Locale    string    `json:"locale,omitempty"`
	At        time.Time `json:"at"`
}

func (e InquiryReceived) EventName() string     { return "inquiry.received" }
func (e InquiryReceived) AggregateID() string   { return string(e.InquiryID) }
func (e InquiryReceived) OccurredAt() time.Time { return e.At }
