package trend

import (
	"strconv"

	"golang.org/x/text/language"
)

var supportedLocales = []language.Tag{
	language.English, // first entry is the fallback
	language.Thai,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var monthNamesEN = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthNamesTH = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// monthNames resolves a BCP 47 locale string to a month-name table.
// Unknown or empty locales fall back to English.
func monthNames(locale string) [12]string {
	tag, err := language.Parse(locale)
	if err != nil {
		return monthNamesEN
	}
	_, idx, _ := localeMatcher.Match(tag)
	if supportedLocales[idx] == language.Thai {
		return monthNamesTH
	}
	return monthNamesEN
}

// monthLabel turns a "YYYY-MM" key into a localized month name. Keys
// that do not parse are returned unchanged.
func monthLabel(month string, names [12]string) string {
	if len(month) != 7 {
		return month
	}
	m, err := strconv.Atoi(month[5:])
	if err != nil || m < 1 || m > 12 {
		return month
	}
	return names[m-1]
}
