package domain

// Receipt is everything a document renderer needs to print a payment
// receipt: the payment, the athlete it belongs to and the sequential number.
type Receipt struct {
	Number  string
	Payment Payment
	Athlete Athlete
}
