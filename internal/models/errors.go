package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable: нет свободных экземпляров книги.
	ErrUnavailable = errors.New("book is not available")
	// ErrConflict: запись изменилась между чтением и записью.
	ErrConflict = errors.New("concurrent modification")
	// ErrAlreadyReturned — выдача уже закрыта. Считается разновидностью ErrNotFound:
	// активной выдачи с таким ID нет.
	ErrAlreadyReturned = fmt.Errorf("%w: issued book record already returned", ErrNotFound)
	// ErrInvalidInput: некорректные входные данные.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists: пользователь с таким email уже существует.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials: неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden: у пользователя нет прав на операцию.
	ErrForbidden = errors.New("forbidden")
)
