package cronus

import (
	"fmt"
	"time"
)

const invalidDate = "Invalid date"

// Locale carries the weekday and month name tables needed to render a day
// header. The month names are in the form used after a day number, which for
// Russian is the genitive case.
type Locale struct {
	Name     string
	Weekdays [7]string
	Months   [13]string
}

// FormatDay renders "<full weekday name>, <day> <full month name>".
func (l Locale) FormatDay(at time.Time) string {
	return fmt.Sprintf("%s, %d %s", l.Weekdays[at.Weekday()], at.Day(), l.Months[at.Month()])
}

var RU = Locale{
	Name: "ru",
	Weekdays: [7]string{
		"воскресенье", "понедельник", "вторник", "среда",
		"четверг", "пятница", "суббота",
	},
	Months: [13]string{
		"",
		"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	},
}

var EN = Locale{
	Name: "en",
	Weekdays: [7]string{
		"Sunday", "Monday", "Tuesday", "Wednesday",
		"Thursday", "Friday", "Saturday",
	},
	Months: [13]string{
		"",
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// Locales maps the configuration value to its table.
var Locales = map[string]Locale{
	RU.Name: RU,
	EN.Name: EN,
}
