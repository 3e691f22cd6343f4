package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"smartfinance/internal/core"
)

// Greeting is the time-of-day welcome line.
type Greeting struct {
	TimeOfDay string `json:"timeOfDay"`
	Name      string `json:"name"`
	Message   string `json:"message"`
}

// NewGreeting picks the greeting for hour (0-23) and addresses user by first
// name, then name, then "Student".
func NewGreeting(hour int, user core.User) Greeting {
	g := Greeting{Name: DisplayName(user)}
	switch {
	case hour < 12:
		g.TimeOfDay = "morning"
		g.Message = "Ready to start your financial day right?"
	case hour < 17:
		g.TimeOfDay = "afternoon"
		g.Message = "How are your finances looking today?"
	default:
		g.TimeOfDay = "evening"
		g.Message = "Time to review your financial progress!"
	}
	return g
}

func DisplayName(user core.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.Name != "" {
		return user.Name
	}
	return "Student"
}

// FormatCurrency renders amount with the symbol of code, USD when unknown.
func FormatCurrency(amount decimal.Decimal, code string) string {
	return core.FormatCurrency(amount, code)
}

// RelativeDate describes a YYYY-MM-DD date relative to now: "Today",
// "Yesterday", "N days ago" within a week, otherwise M/D/YYYY. Future and
// unparseable dates are returned formatted or unchanged.
func RelativeDate(date string, now time.Time) string {
	d, err := core.ParseDate(date, now.Location())
	if err != nil {
		return date
	}
	days := int(math.Floor(now.Sub(d).Hours() / 24))
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return d.Format("1/2/2006")
	}
}
