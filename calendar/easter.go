package calendar

import "time"

// EasterSunday returns Easter Sunday of the Gregorian calendar using the
// Gauss/Meeus congruences. Division and remainder are floored so that any
// integer year lands on a valid day in March or April.
func EasterSunday(year int) Date {
	g := floorMod(year, 19)
	c := floorDiv(year, 100)
	h := floorMod(c-floorDiv(c, 4)-floorDiv(8*c+13, 25)+19*g+15, 30)
	i := h - floorDiv(h, 28)*(1-floorDiv(29, h+1)*floorDiv(21-g, 11))
	j := floorMod(year+floorDiv(year, 4)+i+2-c+floorDiv(c, 4), 7)
	l := i - j
	month := 3 + floorDiv(l+40, 44)
	day := l + 28 - 31*floorDiv(month, 4)
	return NewDate(year, time.Month(month), day)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
