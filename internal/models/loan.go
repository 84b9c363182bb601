package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы выдачи.
const (
	LoanIssued   = "Issued"
	LoanReturned = "Returned"
)

// BookSnapshot — краткие данные книги на момент чтения записи о выдаче.
type BookSnapshot struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookRef — слабая ссылка на книгу. Snapshot равен nil, если книга уже удалена.
type BookRef struct {
	ID       uuid.UUID     `json:"id"`
	Snapshot *BookSnapshot `json:"snapshot,omitempty"`
}

// UserSnapshot — краткие данные читателя.
type UserSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRef — слабая ссылка на пользователя. Snapshot равен nil, если пользователь удалён.
type UserRef struct {
	ID       uuid.UUID     `json:"id"`
	Snapshot *UserSnapshot `json:"snapshot,omitempty"`
}

// Loan — запись о выдаче одного экземпляра книги одному пользователю.
// Статус меняется один раз: Issued -> Returned. Штраф вычисляется только при возврате.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	Book       BookRef    `json:"book"`
	User       UserRef    `json:"user"`
	IssueDate  time.Time  `json:"issueDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     string     `json:"status"`
	FineAmount int        `json:"fineAmount"`
}

// IsReturned сообщает, закрыта ли выдача.
func (l Loan) IsReturned() bool {
	return l.Status == LoanReturned
}

// DummyLoan используется для приёма данных о выдаче из JSON-запроса.
// DueDate принимается в формате 2006-01-02 (до конца дня по UTC) или RFC3339.
type DummyLoan struct {
	BookID  string `json:"bookId" validate:"required,uuid"`
	UserID  string `json:"userId" validate:"required,uuid"`
	DueDate string `json:"dueDate" validate:"required"`
}

// LoanFilter — параметры выборки выдач. UserID == nil означает все выдачи.
type LoanFilter struct {
	UserID *uuid.UUID
	Status string
	Limit  int
	Offset int
}

// LoanNotice — напоминание читателю о сроке возврата, публикуется в RabbitMQ.
type LoanNotice struct {
	LoanID     uuid.UUID `json:"loanId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	BookTitle  string    `json:"bookTitle"`
	DueDate    time.Time `json:"dueDate"`
	FineAmount int       `json:"fineAmount"`
}
