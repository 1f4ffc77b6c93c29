// Package month содержит календарную арифметику по месяцам.
package month

import "time"

// Between возвращает разницу между датами в календарных месяцах:
// (год окончания - год начала) * 12 + (месяц окончания - месяц начала).
// День месяца не учитывается, поэтому 2024-01-31 -> 2024-02-01 даёт 1.
// Если end раньше start, результат отрицательный.
func Between(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}
