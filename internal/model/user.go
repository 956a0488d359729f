// Package model はドメインモデルを定義する。
package model

import "time"

// User はログイン可能な利用者を表す。
// PasswordHashにはbcryptハッシュのみを保持する。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity はリクエストに紐づく認証済みユーザーの識別情報。
// セッションミドルウェアがリクエストコンテキストに注入する。
type Identity struct {
	UserID string
	Name   string
	Email  string
}
