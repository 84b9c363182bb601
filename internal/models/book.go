// Package models содержит доменные структуры библиотеки: книги, пользователей,
// записи о выдаче книг, а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Book представляет книжное издание и его учёт экземпляров.
// AvailableCopies не может быть меньше нуля и больше TotalCopies.
type Book struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Category        string    `json:"category" db:"category"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// DummyBook используется для приёма данных новой книги из JSON-запроса.
// TotalCopies опционален: если не передан, книга создаётся с одним экземпляром.
type DummyBook struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"required,max=255"`
	Category    string `json:"category" validate:"required,max=100"`
	TotalCopies *int   `json:"totalCopies,omitempty" validate:"omitempty,gte=0"`
}

// BookPatch — частичное обновление книги, nil-поля не меняются.
type BookPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Author      *string `json:"author,omitempty" validate:"omitempty,min=1,max=255"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	TotalCopies *int    `json:"totalCopies,omitempty" validate:"omitempty,gte=0"`
}

// LedgerChange описывает изменение счётчика доступных экземпляров.
// Observed — значение, прочитанное перед изменением, Available — новое значение.
// Хранилище применяет изменение, только если текущее значение всё ещё равно Observed.
type LedgerChange struct {
	BookID    uuid.UUID
	Observed  int
	Available int
}
