// Package model はドメインモデルを定義する。
package model

import "time"

// Employee は従業員レコードを表す。
// IDはストアが作成時に採番し、以後変更されない。
type Employee struct {
	ID         string
	Name       string
	Email      string
	Position   string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EmployeeInput はフォームから送信された従業員の業務フィールドを表す。
// 作成・更新の両方で使用する。
type EmployeeInput struct {
	Name       string
	Email      string
	Position   string
	Department string
}

// NewEmployee は入力値からIDなしのEmployeeを生成する。
func NewEmployee(in EmployeeInput) *Employee {
	return &Employee{
		Name:       in.Name,
		Email:      in.Email,
		Position:   in.Position,
		Department: in.Department,
	}
}

// Apply は入力値で業務フィールドを置き換える。IDとタイムスタンプは変更しない。
func (e *Employee) Apply(in EmployeeInput) {
	e.Name = in.Name
	e.Email = in.Email
	e.Position = in.Position
	e.Department = in.Department
}

// Input は現在の業務フィールドをEmployeeInputとして返す。
func (e *Employee) Input() EmployeeInput {
	return EmployeeInput{
		Name:       e.Name,
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
	}
}
