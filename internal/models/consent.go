package models

// ConsentCategory names a cookie category
type ConsentCategory string

const (
	ConsentNecessary   ConsentCategory = "necessary"
	ConsentAnalytics   ConsentCategory = "analytics"
	ConsentFunctional  ConsentCategory = "functional"
	ConsentAdvertising ConsentCategory = "advertising"
)

// CookieConsent holds a visitor's category choices.
// Necessary cookies cannot be declined.
type CookieConsent struct {
	Necessary   bool `json:"necessary"`
	Analytics   bool `json:"analytics"`
	Functional  bool `json:"functional"`
	Advertising bool `json:"advertising"`
}

// DefaultConsent allows only necessary cookies
func DefaultConsent() CookieConsent {
	return CookieConsent{Necessary: true}
}

// Allows reports whether the category was accepted
func (c CookieConsent) Allows(category ConsentCategory) bool {
	switch category {
	case ConsentNecessary:
		return true
	case ConsentAnalytics:
		return c.Analytics
	case ConsentFunctional:
		return c.Functional
	case ConsentAdvertising:
		return c.Advertising
	}
	return false
}
