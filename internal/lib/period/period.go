// Package period содержит расчёты, связанные со сроками выдачи книг.
package period

import "time"

const day = 24 * time.Hour

// OverdueDays считает количество дней просрочки между сроком возврата и фактической датой.
// Неполный день округляется вверх. Если книга возвращена в срок или раньше, возвращает 0.
func OverdueDays(due, returned time.Time) int {
	if !returned.After(due) {
		return 0
	}
	late := returned.Sub(due)

	days := late / day
	if late%day != 0 {
		days++
	}
	return int(days)
}

// DueWithin сообщает, наступает ли срок возврата в интервале (now, now+window].
func DueWithin(due, now time.Time, window time.Duration) bool {
	return due.After(now) && !due.After(now.Add(window))
}
