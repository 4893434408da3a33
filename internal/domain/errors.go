package domain

import (
	"context"
	"errors"
	"fmt"
)

// Определение бизнес-ошибок
var (
	ErrBranchNotFound      = errors.New("branch not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrManagerNotFound     = errors.New("manager not found")
	ErrDuplicateBranchName = errors.New("branch with this name already exists")
	ErrDuplicateEmail      = errors.New("employee with this email already exists")
	ErrNotManagerRole      = errors.New("role does not qualify as manager")
	ErrValidation          = errors.New("validation error")
	ErrActorRequired       = errors.New("actor identity is required")
	ErrMissingRelation     = errors.New("relation does not exist")
)

// StoreError - ошибка хранилища с указанием таблицы и операции
type StoreError struct {
	Table string
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FetchError - ошибка загрузки одного уровня иерархии
type FetchError struct {
	Level string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("fetch %s: timed out: %v", e.Level, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Level, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout сообщает, что уровень не уложился в отведённое время
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// FailedLevels возвращает уровни, упомянутые в ошибке агрегации
func FailedLevels(err error) []string {
	var levels []string
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *FetchError:
			levels = append(levels, e.Level)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		default:
			walk(errors.Unwrap(err))
		}
	}
	walk(err)
	return levels
}
