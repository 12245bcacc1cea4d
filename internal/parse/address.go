package parse

import (
	"regexp"
	"strings"

	"prozon/internal"
	"prozon/internal/util"
)

// Country is fixed: the supplier only delivers domestically.
const defaultCountry = "France"

var (
	rePhone     = regexp.MustCompile(`0\d{9}`)
	rePhoneLine = regexp.MustCompile(`^0\d{9}$`)
)

// ResolveAddress assigns name/street/city from the delivery block by line
// count. This is best-effort: blocks with two lines leave the city empty
// and blocks beyond four lines drop the extras. RawBlock keeps everything.
func ResolveAddress(block string) internal.Address {
	lines := util.SplitLines(block)

	phones := make([]string, 0, 2)
	for _, line := range lines {
		phones = append(phones, rePhone.FindAllString(line, -1)...)
	}

	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if rePhoneLine.MatchString(line) || strings.EqualFold(line, defaultCountry) {
			continue
		}
		filtered = append(filtered, line)
	}

	addr := internal.Address{
		Country:  defaultCountry,
		Phone:    strings.Join(phones, ", "),
		RawBlock: strings.Join(lines, "\n"),
	}

	switch {
	case len(filtered) >= 3:
		addr.FullName = filtered[0] + " " + filtered[1]
		addr.Street = filtered[2]
		if len(filtered) > 3 {
			addr.City = filtered[3]
		}
	case len(filtered) >= 1:
		addr.FullName = filtered[0]
		if len(filtered) > 1 {
			addr.Street = filtered[1]
		}
	}

	return addr
}
