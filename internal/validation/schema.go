// Package validation は宣言的なフィールド検証スキーマを提供する。
//
// スキーマは「フィールド名 → ルール集合」の対応を宣言し、
// 評価結果をフィールドとメッセージの組のリストとして返す。
// HTTP層には依存しない。
package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Rule は1フィールド分の検証ルールを表す。
type Rule struct {
	// Field はフォーム上のフィールド名。
	Field string
	// Label はメッセージに表示するフィールド名。
	Label string
	// Tags はvalidatorのタグ文字列（例: "required,email,max=254"）。
	Tags string
	// EqualTo が設定されている場合、Tagsは指定フィールドの値と比較して評価される（eqfield等）。
	EqualTo string
}

// Schema は検証ルールの宣言順リスト。
type Schema []Rule

// FieldError はフィールド単位の検証エラー。
type FieldError struct {
	Field   string
	Message string
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate はvaluesをスキーマの宣言順に評価する。
// 各フィールドにつき最初に失敗したルールのメッセージのみを返す。
// エラーがない場合は空のスライスを返す。
func (s Schema) Validate(values map[string]string) []FieldError {
	errs := make([]FieldError, 0)
	for _, rule := range s {
		value := values[rule.Field]

		var err error
		if rule.EqualTo != "" {
			err = engine().VarWithValue(value, values[rule.EqualTo], rule.Tags)
		} else {
			err = engine().Var(value, rule.Tags)
		}
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			errs = append(errs, FieldError{Field: rule.Field, Message: fmt.Sprintf("%s is invalid", rule.label())})
			continue
		}
		errs = append(errs, FieldError{
			Field:   rule.Field,
			Message: message(rule, verrs[0]),
		})
	}
	return errs
}

// Fields はスキーマが宣言するフィールド名を宣言順に返す。
func (s Schema) Fields() []string {
	fields := make([]string, 0, len(s))
	for _, rule := range s {
		fields = append(fields, rule.Field)
	}
	return fields
}

func (r Rule) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Field
}

// message は失敗したタグからユーザー向けメッセージを生成する。
func message(rule Rule, fe validator.FieldError) string {
	label := rule.label()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// HasField はerrsに指定フィールドのエラーが含まれるかを返す。
func HasField(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
